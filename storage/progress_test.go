package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core"
)

func TestOpenProgressStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		conf    core.ProgressConfig
		wantErr string
	}{
		{name: "memory", conf: core.ProgressConfig{Store: "memory"}},
		{name: "sqlite", conf: core.ProgressConfig{Store: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "progress.db")}},
		{name: "postgres without db", conf: core.ProgressConfig{Store: "postgres"}, wantErr: "postgres progress store needs a database"},
		{name: "unknown", conf: core.ProgressConfig{Store: "mongo"}, wantErr: `unknown progress store "mongo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closer, err := OpenProgressStore(ctx, &core.Config{Progress: tt.conf}, nil)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, closer.Close()) }()

			require.NoError(t, store.Save(ctx, "l1", "c1", []byte(`{"course_id":"c1"}`)))
			records, err := store.Load(ctx, "l1")
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"c1": []byte(`{"course_id":"c1"}`)}, records)
		})
	}
}
