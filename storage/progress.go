// Package storage selects the progress store backend from the configuration.
package storage

import (
	"context"
	"database/sql"
	"io"

	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/progress"
	inmemdb "github.com/dentalearn/lms/storage/database/inmem"
	sqlitedb "github.com/dentalearn/lms/storage/database/sqlite"
	sqlxrepos "github.com/dentalearn/lms/storage/database/sqlx"
	redisstore "github.com/dentalearn/lms/storage/redis"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenProgressStore opens the store named by conf.Progress.Store.
// db backs the postgres store; the returned Closer releases the other backends.
func OpenProgressStore(ctx context.Context, conf *core.Config, db *sql.DB) (progress.Store, io.Closer, error) {
	switch conf.Progress.Store {
	case "memory":
		return inmemdb.NewProgressStore(inmemdb.Open()), nopCloser{}, nil
	case "", "postgres":
		if db == nil {
			return nil, nil, errors.New("postgres progress store needs a database")
		}
		return sqlxrepos.NewProgressStore(db), nopCloser{}, nil
	case "sqlite":
		s, err := sqlitedb.Open(ctx, conf.Progress.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "redis":
		s, err := redisstore.Open(ctx, conf.Progress)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, errors.Errorf("unknown progress store %q", conf.Progress.Store)
	}
}
