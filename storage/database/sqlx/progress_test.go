package sqlxrepos

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/storage/database"
)

func TestProgressStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	ctx := context.Background()
	store := NewProgressStore(db)
	learnerID := uuid.New().String()

	records, err := store.Load(ctx, learnerID)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Save(ctx, learnerID, "course-1", []byte(`{"course_id": "course-1"}`)))
	require.NoError(t, store.Save(ctx, learnerID, "course-1", []byte(`{"course_id": "course-1", "video_progress": {}}`)))
	require.NoError(t, store.Save(ctx, learnerID, "course-2", []byte(`{"course_id": "course-2"}`)))

	records, err = store.Load(ctx, learnerID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"course_id": "course-1", "video_progress": {}}`, string(records["course-1"]))
	assert.JSONEq(t, `{"course_id": "course-2"}`, string(records["course-2"]))
}
