// Package sqlxrepos implements the PostgreSQL progress store with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/progress"
)

type progressRecord struct {
	CourseID string `db:"course_id"`
	Record   []byte `db:"record"`
}

type progressStore struct {
	db *sqlx.DB
}

var _ progress.Store = (*progressStore)(nil)

// NewProgressStore wraps an open postgres connection.
func NewProgressStore(db *sql.DB) progress.Store {
	return &progressStore{db: sqlx.NewDb(db, "postgres")}
}

func (s *progressStore) Load(ctx context.Context, learnerID string) (map[string][]byte, error) {
	var rows []progressRecord
	q := `SELECT course_id, record FROM course_progress WHERE learner_id = $1`
	if err := s.db.SelectContext(ctx, &rows, q, learnerID); err != nil {
		return nil, errors.Wrap(err, "selecting progress records")
	}
	records := make(map[string][]byte, len(rows))
	for _, r := range rows {
		records[r.CourseID] = r.Record
	}
	return records, nil
}

// Save upserts the whole record in a single statement.
func (s *progressStore) Save(ctx context.Context, learnerID, courseID string, record []byte) error {
	q := `INSERT INTO course_progress (learner_id, course_id, record, updated_at)
		VALUES (:learner_id, :course_id, :record, :updated_at)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`
	args := map[string]interface{}{
		"learner_id": learnerID,
		"course_id":  courseID,
		"record":     string(record),
		"updated_at": core.NowFunc(),
	}
	if _, err := s.db.NamedExecContext(ctx, q, args); err != nil {
		return errors.Wrap(err, "upserting progress record")
	}
	return nil
}
