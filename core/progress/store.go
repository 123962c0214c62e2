package progress

import (
	"context"
)

// Store persists progress records, one opaque JSON document per (learner, course).
type Store interface {
	// Load returns every record of the learner keyed by course ID. No records is not an error.
	Load(ctx context.Context, learnerID string) (map[string][]byte, error)
	// Save atomically inserts or replaces the record of the learner for the course.
	Save(ctx context.Context, learnerID, courseID string, record []byte) error
}
