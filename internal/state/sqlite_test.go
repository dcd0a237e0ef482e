package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersight-labs/ordersight/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetRun(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("check", "prod")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "check", got.Stage)
	assert.Equal(t, "prod", got.Mode)
	assert.Equal(t, RunStatusRunning, got.Status)
	assert.Zero(t, got.CriticalRules)
	assert.Empty(t, got.Error)
	assert.Nil(t, got.CompletedAt)
}

func TestGetRunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestCompleteRun(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("check", "prod")
	require.NoError(t, err)

	require.NoError(t, store.CompleteRun(run.ID, RunStatusGated, 3, "critical data quality failures"))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusGated, got.Status)
	assert.Equal(t, 3, got.CriticalRules)
	assert.Equal(t, "critical data quality failures", got.Error)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.CompletedAt.Before(got.StartedAt))
}

func TestCompleteRunWithoutError(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("transform", "dev")
	require.NoError(t, err)
	require.NoError(t, store.CompleteRun(run.ID, RunStatusCompleted, 0, ""))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Empty(t, got.Error)
}

func TestListRuns(t *testing.T) {
	store := setupTestStore(t)

	for _, stage := range []string{"generate", "check", "transform", "insights"} {
		_, err := store.CreateRun(stage, "dev")
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 4)

	limited, err := store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListRunsEmpty(t *testing.T) {
	store := setupTestStore(t)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())

	run, err := store.CreateRun("check", "dev")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopen and read the same run back.
	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(path))
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestOperationsRequireOpen(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, err := store.CreateRun("check", "dev")
	require.Error(t, err)

	err = store.CompleteRun("x", RunStatusCompleted, 0, "")
	require.Error(t, err)

	_, err = store.ListRuns(1)
	require.Error(t, err)
}
