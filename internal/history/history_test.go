package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_AppendAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, mode := range []string{"full", "add", "add"} {
		require.NoError(t, store.Append(ctx, Entry{
			BuildID:   "build-" + string(rune('a'+i)),
			Mode:      mode,
			Outcome:   "success",
			StartedAt: start.Add(time.Duration(i) * time.Minute),
			Duration:  1500 * time.Millisecond,
			Indexed:   10,
			Work:      i + 1,
			Published: i + 1,
			Newest:    "archive/x.html",
		}))
	}

	got, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "build-c", got[0].BuildID)
	assert.Equal(t, "build-b", got[1].BuildID)
	assert.Equal(t, 3, got[0].Work)
	assert.Equal(t, 1500*time.Millisecond, got[0].Duration)
	assert.True(t, got[0].StartedAt.Equal(start.Add(2*time.Minute)))
	assert.Equal(t, "archive/x.html", got[0].Newest)
}

func TestSQLiteStore_DuplicateBuildID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	e := Entry{BuildID: "same", Mode: "full", Outcome: "success", StartedAt: time.Now()}
	require.NoError(t, store.Append(context.Background(), e))
	assert.Error(t, store.Append(context.Background(), e))
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), Entry{BuildID: "one", Mode: "add", Outcome: "noop", StartedAt: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "noop", got[0].Outcome)
}
