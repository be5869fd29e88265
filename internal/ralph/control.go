package ralph

import (
	"errors"
	"fmt"
	"time"

	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/state"
)

// ErrNoActiveLoop is returned when a signal targets a project without a
// running loop.
var ErrNoActiveLoop = errors.New("no active ralph loop")

// RequestStop asks the running loop to finish its current iteration and
// then exit with completed status. Only an active loop can transition to
// stopping; repeating the request is a no-op.
func RequestStop(projectPath string) error {
	store := state.NewStore(projectPath)
	loopState, err := store.Load()
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return ErrNoActiveLoop
		}
		return err
	}

	switch loopState.Status {
	case models.RalphStatusStopping:
		return nil
	case models.RalphStatusActive:
	default:
		return fmt.Errorf("cannot stop loop in status %q", loopState.Status)
	}

	loopState.Status = models.RalphStatusStopping
	return store.Save(loopState)
}

// RequestCancel terminates the loop immediately. The runner kills the
// subprocess within one poll tick. Cancelled is terminal: it is written
// even over a pending stop request, and a loop that already reached a
// terminal status cannot be cancelled again.
func RequestCancel(projectPath string) error {
	store := state.NewStore(projectPath)
	loopState, err := store.Load()
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return ErrNoActiveLoop
		}
		return err
	}

	if loopState.Status.Terminal() {
		return fmt.Errorf("loop already finished with status %q", loopState.Status)
	}
	if loopState.Status == models.RalphStatusIdle {
		return ErrNoActiveLoop
	}

	now := time.Now().UTC()
	loopState.Status = models.RalphStatusCancelled
	loopState.EndedAt = &now
	return store.Save(loopState)
}

// GetStatus returns the persisted state for a project, or ErrNoActiveLoop
// if none was ever recorded.
func GetStatus(projectPath string) (*models.RalphState, error) {
	store := state.NewStore(projectPath)
	loopState, err := store.Load()
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, ErrNoActiveLoop
		}
		return nil, err
	}
	return loopState, nil
}
