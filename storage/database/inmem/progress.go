package inmemdb

import (
	"context"

	"github.com/dentalearn/lms/core/progress"
)

type progressStore struct {
	db *DB
}

var _ progress.Store = (*progressStore)(nil)

func NewProgressStore(db *DB) progress.Store {
	return &progressStore{db: db}
}

func (s *progressStore) Load(_ context.Context, learnerID string) (map[string][]byte, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	records := make(map[string][]byte, len(s.db.progress[learnerID]))
	for courseID, record := range s.db.progress[learnerID] {
		records[courseID] = append([]byte(nil), record...)
	}
	return records, nil
}

func (s *progressStore) Save(_ context.Context, learnerID, courseID string, record []byte) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	if s.db.progress[learnerID] == nil {
		s.db.progress[learnerID] = make(map[string][]byte)
	}
	s.db.progress[learnerID][courseID] = append([]byte(nil), record...)
	return nil
}
