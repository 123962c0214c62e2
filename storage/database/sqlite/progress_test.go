package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core/progress"
)

func openTestStore(t *testing.T, path string) *ProgressStore {
	t.Helper()
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProgressStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")
	store := openTestStore(t, path)

	records, err := store.Load(ctx, "learner-1")
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Save(ctx, "learner-1", "course-1", []byte(`{"v":1}`)))
	require.NoError(t, store.Save(ctx, "learner-1", "course-2", []byte(`{"v":2}`)))
	require.NoError(t, store.Save(ctx, "learner-2", "course-1", []byte(`{"v":3}`)))
	require.NoError(t, store.Save(ctx, "learner-1", "course-1", []byte(`{"v":4}`)))

	records, err = store.Load(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"course-1": []byte(`{"v":4}`),
		"course-2": []byte(`{"v":2}`),
	}, records)

	// reopen
	require.NoError(t, store.Close())
	reopened := openTestStore(t, path)
	records, err = reopened.Load(ctx, "learner-2")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"course-1": []byte(`{"v":3}`)}, records)
}

func TestProgressStore_tracker(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")
	store := openTestStore(t, path)

	tracker := progress.NewTracker("learner-1", store, progress.TrackerConfig{})
	_, err := tracker.RecordVideoProgress(ctx, "course-1", "video-1", 290, 300)
	require.NoError(t, err)

	reloaded := progress.NewTracker("learner-1", openTestStore(t, path), progress.TrackerConfig{})
	cp, ok, err := reloaded.CourseProgress(ctx, "course-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cp.Videos["video-1"].Completed)
	assert.Equal(t, 290.0, cp.Videos["video-1"].LastPosition)
}

func TestProgressStore_closed(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, store.Close())

	tracker := progress.NewTracker("learner-1", store, progress.TrackerConfig{})
	_, err := tracker.RecordVideoProgress(ctx, "course-1", "video-1", 10, 300)
	assert.ErrorIs(t, err, progress.ErrPersistence)
}
