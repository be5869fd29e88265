package ralph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/state"
)

func seedState(t *testing.T, status models.RalphStatus) string {
	t.Helper()
	dir := t.TempDir()
	store := state.NewStore(dir)
	require.NoError(t, store.Save(&models.RalphState{
		Status:      status,
		ProjectFile: dir + "/PROJECT.md",
		ProjectPath: dir,
		StartedAt:   time.Now().UTC(),
	}))
	return dir
}

func TestRequestStop(t *testing.T) {
	dir := seedState(t, models.RalphStatusActive)
	require.NoError(t, RequestStop(dir))

	loopState, err := GetStatus(dir)
	require.NoError(t, err)
	require.Equal(t, models.RalphStatusStopping, loopState.Status)

	// Idempotent.
	require.NoError(t, RequestStop(dir))
}

func TestRequestStopNoLoop(t *testing.T) {
	require.ErrorIs(t, RequestStop(t.TempDir()), ErrNoActiveLoop)
}

func TestRequestStopTerminal(t *testing.T) {
	dir := seedState(t, models.RalphStatusCompleted)
	err := RequestStop(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot stop")
}

func TestRequestCancel(t *testing.T) {
	dir := seedState(t, models.RalphStatusActive)
	require.NoError(t, RequestCancel(dir))

	loopState, err := GetStatus(dir)
	require.NoError(t, err)
	require.Equal(t, models.RalphStatusCancelled, loopState.Status)
	require.NotNil(t, loopState.EndedAt)
}

func TestRequestCancelOverridesStop(t *testing.T) {
	dir := seedState(t, models.RalphStatusStopping)
	require.NoError(t, RequestCancel(dir))

	loopState, err := GetStatus(dir)
	require.NoError(t, err)
	require.Equal(t, models.RalphStatusCancelled, loopState.Status)
}

func TestRequestCancelTerminal(t *testing.T) {
	dir := seedState(t, models.RalphStatusCancelled)
	err := RequestCancel(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already finished")
}

func TestGetStatusNoLoop(t *testing.T) {
	_, err := GetStatus(t.TempDir())
	require.ErrorIs(t, err, ErrNoActiveLoop)
}
