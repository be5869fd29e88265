package ralph

import "github.com/tOgg1/ralph/internal/models"

// Verdict is the completion decision after one iteration.
type Verdict string

const (
	// VerdictContinue means the loop proceeds to the next iteration.
	VerdictContinue Verdict = "continue"

	// VerdictCompletedByPromise means the assistant emitted the
	// configured completion promise.
	VerdictCompletedByPromise Verdict = "completed_by_promise"

	// VerdictCompletedByTasks means every checklist task is done.
	VerdictCompletedByTasks Verdict = "completed_by_tasks"

	// VerdictMaxReached means the iteration cap was hit.
	VerdictMaxReached Verdict = "max_reached"
)

// EvalConfig carries the completion knobs for Evaluate.
type EvalConfig struct {
	// MaxIterations caps iterations (0 = unlimited).
	MaxIterations int

	// CompletionPromise is the configured promise text ("" = disabled).
	CompletionPromise string
}

// Evaluate decides whether the loop should stop after an iteration.
// Pure function of its inputs; first match wins. An explicit promise is
// the strongest signal of intentional completion, so it is checked
// before the task list: a fully checked list must not mask it.
func Evaluate(loopState *models.RalphState, result models.IterationResult, cfg EvalConfig) Verdict {
	if cfg.CompletionPromise != "" && result.PromiseFound {
		return VerdictCompletedByPromise
	}

	if result.TasksAfter.AllDone() {
		return VerdictCompletedByTasks
	}

	if cfg.MaxIterations > 0 && loopState.Iteration >= cfg.MaxIterations {
		return VerdictMaxReached
	}

	return VerdictContinue
}
