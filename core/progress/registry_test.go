package progress

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Tracker(t *testing.T) {
	reg := NewRegistry(newMemStore(), TrackerConfig{})

	t1 := reg.Tracker("learner-1")
	assert.Same(t, t1, reg.Tracker("learner-1"))
	assert.NotSame(t, t1, reg.Tracker("learner-2"))
	assert.Equal(t, "learner-1", t1.LearnerID())
	assert.Equal(t, DefaultVideoCompletionThreshold, t1.threshold)
}

func TestRegistry_Peek(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	reg := NewRegistry(store, TrackerConfig{})

	seed := NewTracker(learner, store, TrackerConfig{})
	_, err := seed.RecordVideoProgress(ctx, courseID, videoA, 10, 300)
	require.NoError(t, err)

	peeked := reg.Peek(learner)
	cp, ok, err := peeked.CourseProgress(ctx, courseID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10.0, cp.Videos[videoA].LastPosition)
	assert.NotSame(t, peeked, reg.Tracker(learner), "peeking does not register a tracker")

	live := reg.Tracker(learner)
	assert.Same(t, live, reg.Peek(learner))
	assert.Same(t, live, reg.Tracker(learner), "peeking does not replace the registered tracker")
}

func TestRegistry_heldTrackerNeverUndoesCompletion(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	reg := NewRegistry(store, TrackerConfig{})

	// a request holds the learner's tracker across a background read
	held := reg.Tracker(learner)
	_, err := held.RecordVideoProgress(ctx, courseID, videoB, 1, 120)
	require.NoError(t, err)

	_, _, err = reg.Peek(learner).CourseProgress(ctx, courseID)
	require.NoError(t, err)

	// another request completes video A, then the held tracker writes again
	got, err := reg.Tracker(learner).RecordVideoProgress(ctx, courseID, videoA, 300, 300)
	require.NoError(t, err)
	require.True(t, got.Completed)
	_, err = held.RecordVideoProgress(ctx, courseID, videoB, 2, 120)
	require.NoError(t, err)

	reloaded, ok, err := NewTracker(learner, store, TrackerConfig{}).CourseProgress(ctx, courseID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, reloaded.Videos, videoA)
	assert.True(t, reloaded.Videos[videoA].Completed)
	assert.Equal(t, 2.0, reloaded.Videos[videoB].LastPosition)
}

func TestRegistry_Flush(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	reg := NewRegistry(store, TrackerConfig{})

	require.NoError(t, reg.Flush(ctx), "nothing to flush")

	store.setFailSave(true)
	for _, id := range []string{"learner-1", "learner-2"} {
		_, err := reg.Tracker(id).RecordVideoProgress(ctx, courseID, videoA, 10, 300)
		require.Error(t, err)
	}

	err := reg.Flush(ctx)
	assert.True(t, errors.Is(err, ErrPersistence))

	store.setFailSave(false)
	require.NoError(t, reg.Flush(ctx))
	assert.Zero(t, reg.Tracker("learner-1").Pending())
	assert.Zero(t, reg.Tracker("learner-2").Pending())
	assert.Len(t, store.records, 2)
}
