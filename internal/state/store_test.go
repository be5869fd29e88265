package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/ralph/internal/models"
)

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(42 * time.Second)
	original := &models.RalphState{
		Status:            models.RalphStatusActive,
		ProjectFile:       filepath.Join(dir, "project.md"),
		ProjectPath:       dir,
		Iteration:         2,
		MaxIterations:     10,
		CompletionPromise: "DONE",
		PermissionMode:    "acceptEdits",
		Model:             "opus",
		MaxBudgetUSD:      5.0,
		StartedAt:         started,
		TasksTotal:        3,
		TasksCompleted:    1,
		Iterations: []models.IterationResult{
			{
				Number:          1,
				StartedAt:       started,
				EndedAt:         ended,
				DurationSeconds: 42.0,
				InputTokens:     1200,
				OutputTokens:    300,
				CostUSD:         0.37,
				ToolCalls:       5,
				Model:           "opus",
				ResultText:      "did a thing",
				TasksBefore:     models.TaskProgress{Total: 3, Completed: 0},
				TasksAfter:      models.TaskProgress{Total: 3, Completed: 1},
			},
		},
	}

	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)

	// Save stamps UpdatedAt; compare the rest field-for-field.
	require.False(t, loaded.UpdatedAt.IsZero())
	loaded.UpdatedAt = original.UpdatedAt
	require.Equal(t, original, loaded)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Save(&models.RalphState{Status: models.RalphStatusActive}))
	require.NoError(t, store.Save(&models.RalphState{Status: models.RalphStatusCompleted}))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "ralph-state.json", entries[0].Name())
}

func TestSaveFailsOnUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks do not apply")
	}

	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(&models.RalphState{Status: models.RalphStatusActive}))

	stateDir := filepath.Dir(store.Path())
	require.NoError(t, os.Chmod(stateDir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(stateDir, 0o755) })

	err := store.Save(&models.RalphState{Status: models.RalphStatusCompleted})
	require.ErrorIs(t, err, ErrPersist)
}

func TestModTime(t *testing.T) {
	store := NewStore(t.TempDir())
	require.True(t, store.ModTime().IsZero())

	require.NoError(t, store.Save(&models.RalphState{Status: models.RalphStatusActive}))
	require.False(t, store.ModTime().IsZero())
}
