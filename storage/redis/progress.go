// Package redisstore implements a progress store on Redis: one hash per learner, one field per course.
package redisstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/progress"
)

const keyPrefix = "progress:"

type ProgressStore struct {
	client redis.UniversalClient
}

var _ progress.Store = (*ProgressStore)(nil)

func NewProgressStore(client redis.UniversalClient) *ProgressStore {
	return &ProgressStore{client: client}
}

// Open connects to the configured server and pings it.
func Open(ctx context.Context, conf core.ProgressConfig) (*ProgressStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return NewProgressStore(client), nil
}

func key(learnerID string) string {
	return keyPrefix + learnerID
}

func (s *ProgressStore) Load(ctx context.Context, learnerID string) (map[string][]byte, error) {
	fields, err := s.client.HGetAll(ctx, key(learnerID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "reading progress hash")
	}
	records := make(map[string][]byte, len(fields))
	for courseID, record := range fields {
		records[courseID] = []byte(record)
	}
	return records, nil
}

// Save replaces one field of the learner's hash; HSET is atomic.
func (s *ProgressStore) Save(ctx context.Context, learnerID, courseID string, record []byte) error {
	return errors.Wrap(s.client.HSet(ctx, key(learnerID), courseID, record).Err(), "writing progress hash")
}

func (s *ProgressStore) Close() error {
	return s.client.Close()
}
