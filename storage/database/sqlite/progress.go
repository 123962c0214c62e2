// Package sqlitedb implements a progress store on an embedded SQLite database,
// for single-node deployments without PostgreSQL.
package sqlitedb

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/progress"
)

const schema = `
CREATE TABLE IF NOT EXISTS course_progress (
    learner_id TEXT NOT NULL,
    course_id  TEXT NOT NULL,
    record     BLOB NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (learner_id, course_id)
)`

type ProgressStore struct {
	db *sql.DB
}

var _ progress.Store = (*ProgressStore)(nil)

// Open opens (or creates) the database at path and ensures its schema.
func Open(ctx context.Context, path string) (*ProgressStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	// a single writer avoids SQLITE_BUSY between concurrent saves
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating sqlite schema")
	}
	return &ProgressStore{db: db}, nil
}

func (s *ProgressStore) Load(ctx context.Context, learnerID string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT course_id, record FROM course_progress WHERE learner_id = ?`, learnerID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting progress records")
	}
	defer func() { _ = rows.Close() }()

	records := make(map[string][]byte)
	for rows.Next() {
		var (
			courseID string
			record   []byte
		)
		if err = rows.Scan(&courseID, &record); err != nil {
			return nil, errors.Wrap(err, "scanning progress record")
		}
		records[courseID] = record
	}
	return records, errors.Wrap(rows.Err(), "iterating progress records")
}

func (s *ProgressStore) Save(ctx context.Context, learnerID, courseID string, record []byte) error {
	q := `INSERT INTO course_progress (learner_id, course_id, record, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, q, learnerID, courseID, record, core.NowFunc().Format("2006-01-02T15:04:05.000Z07:00"))
	return errors.Wrap(err, "upserting progress record")
}

func (s *ProgressStore) Close() error {
	return s.db.Close()
}
