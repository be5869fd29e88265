// Package ralph implements the Ralph Loop engine: an iteration
// controller that repeatedly invokes the claude CLI against a project
// task list until a completion condition is met, persisting progress
// through the state store after every step.
package ralph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/tOgg1/ralph/internal/config"
	"github.com/tOgg1/ralph/internal/harness"
	"github.com/tOgg1/ralph/internal/logging"
	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/project"
	"github.com/tOgg1/ralph/internal/state"
)

const (
	defaultPollInterval        = 1 * time.Second
	defaultSnapshotInterval    = 5 * time.Second
	defaultInterIterationPause = 1 * time.Second
)

// ExecuteFunc runs one claude invocation and returns exit code, raw
// stdout, and error. The context is cancelled to kill the subprocess on
// timeout or cancellation.
type ExecuteFunc func(ctx context.Context, prompt, systemPrompt, workDir string, opts harness.Options) (int, string, error)

// StartOptions configure one loop run.
type StartOptions struct {
	// ProjectFile is the Ralph project markdown file (required).
	ProjectFile string

	// ProjectRoot is the project root directory; defaults to the
	// project file's directory.
	ProjectRoot string

	// MaxIterations caps iterations (0 = unlimited).
	MaxIterations int

	// CompletionPromise is matched inside <promise> tags ("" = disabled).
	CompletionPromise string

	// PermissionMode is passed to the claude CLI.
	PermissionMode string

	// Model selects the claude model ("" = CLI default).
	Model string

	// MaxBudgetUSD caps spend per iteration (0 = none).
	MaxBudgetUSD float64

	// IterationTimeout bounds one iteration (0 = none). On expiry the
	// subprocess is killed and the loop continues.
	IterationTimeout time.Duration

	// Yolo uses --dangerously-skip-permissions.
	Yolo bool
}

// Runner executes the Ralph loop for one project.
type Runner struct {
	Config           *config.Config
	Logger           zerolog.Logger
	PollInterval     time.Duration
	SnapshotInterval time.Duration
	// InterIterationPause is inserted between iterations so
	// back-to-back invocations don't hammer the CLI (0 = none).
	InterIterationPause time.Duration
	Exec                ExecuteFunc

	// RunRecorder, when set, is invoked with the terminal state after
	// the loop exits so finished runs land in the history store.
	RunRecorder func(ctx context.Context, loopState *models.RalphState)
}

// NewRunner creates a Runner with default dependencies.
func NewRunner(cfg *config.Config) *Runner {
	runner := &Runner{
		Config:              cfg,
		Logger:              logging.Component("ralph"),
		PollInterval:        defaultPollInterval,
		SnapshotInterval:    defaultSnapshotInterval,
		InterIterationPause: defaultInterIterationPause,
		Exec:                defaultExecute,
	}
	if cfg != nil {
		if cfg.Loop.PollInterval > 0 {
			runner.PollInterval = cfg.Loop.PollInterval
		}
		if cfg.Loop.SnapshotInterval > 0 {
			runner.SnapshotInterval = cfg.Loop.SnapshotInterval
		}
	}
	return runner
}

// Run executes the loop until a terminal status is reached. It blocks;
// cancellation of ctx behaves like an external cancel (the subprocess
// is killed and the state file records cancelled). Configuration errors
// surface synchronously before any state is written; once the loop is
// active only persistence failures propagate out.
func (r *Runner) Run(ctx context.Context, opts StartOptions) error {
	if r.Exec == nil {
		r.Exec = defaultExecute
	}
	if r.PollInterval <= 0 {
		r.PollInterval = defaultPollInterval
	}
	if r.SnapshotInterval <= 0 {
		r.SnapshotInterval = defaultSnapshotInterval
	}

	projectFile, err := filepath.Abs(opts.ProjectFile)
	if err != nil {
		return fmt.Errorf("invalid project file path: %w", err)
	}
	if _, err := os.Stat(projectFile); err != nil {
		return fmt.Errorf("project file not found: %s", opts.ProjectFile)
	}

	projectRoot := opts.ProjectRoot
	if projectRoot == "" {
		projectRoot = filepath.Dir(projectFile)
	}
	projectRoot, err = filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("invalid project root: %w", err)
	}

	store := state.NewStore(projectRoot)
	logger := r.Logger.With().Str("project", projectRoot).Logger()

	initial := project.ReadTaskProgress(projectFile)
	loopState := &models.RalphState{
		Status:            models.RalphStatusActive,
		ProjectFile:       projectFile,
		ProjectPath:       projectRoot,
		MaxIterations:     opts.MaxIterations,
		CompletionPromise: opts.CompletionPromise,
		PermissionMode:    opts.PermissionMode,
		Model:             opts.Model,
		MaxBudgetUSD:      opts.MaxBudgetUSD,
		StartedAt:         time.Now().UTC(),
		TasksTotal:        initial.Total,
		TasksCompleted:    initial.Completed,
		Iterations:        []models.IterationResult{},
	}
	if err := loopState.Validate(); err != nil {
		return err
	}
	if err := store.Save(loopState); err != nil {
		return err
	}

	logger.Info().
		Int("tasks_total", initial.Total).
		Int("tasks_completed", initial.Completed).
		Int("max_iterations", opts.MaxIterations).
		Msg("ralph loop started")

	err = r.runLoop(ctx, store, loopState, opts, logger)

	if r.RunRecorder != nil && loopState.Status.Terminal() {
		r.RunRecorder(context.WithoutCancel(ctx), loopState)
	}

	in, out := loopState.TotalTokens()
	logger.Info().
		Str("status", string(loopState.Status)).
		Int("iterations", len(loopState.Iterations)).
		Float64("cost_usd", loopState.TotalCostUSD()).
		Int("tokens_in", in).
		Int("tokens_out", out).
		Msg("ralph loop finished")

	return err
}

func (r *Runner) runLoop(ctx context.Context, store *state.Store, loopState *models.RalphState, opts StartOptions, logger zerolog.Logger) error {
	evalCfg := EvalConfig{
		MaxIterations:     opts.MaxIterations,
		CompletionPromise: opts.CompletionPromise,
	}

	iteration := 0
	for {
		iteration++

		// Resumed or externally grown state can already be at the cap.
		if opts.MaxIterations > 0 && iteration > opts.MaxIterations {
			return r.finish(store, loopState, models.RalphStatusMaxReached, "", logger)
		}

		// Signal check: honor stop/cancel written since our last save.
		switch externalStatus(store) {
		case models.RalphStatusCancelled:
			logger.Info().Msg("loop cancelled externally")
			return r.finish(store, loopState, models.RalphStatusCancelled, "", logger)
		case models.RalphStatusStopping:
			logger.Info().Msg("stop requested, exiting loop")
			return r.finish(store, loopState, models.RalphStatusCompleted, "", logger)
		}

		if ctx.Err() != nil {
			return r.finish(store, loopState, models.RalphStatusCancelled, "", logger)
		}

		content, tasksBefore := readProject(loopState.ProjectFile)
		if tasksBefore.AllDone() {
			loopState.TasksTotal = tasksBefore.Total
			loopState.TasksCompleted = tasksBefore.Completed
			logger.Info().Msg("all tasks completed")
			return r.finish(store, loopState, models.RalphStatusCompleted, "", logger)
		}

		prompt := BuildPrompt(content)
		systemPrompt := BuildSystemPrompt(iteration, opts.MaxIterations, loopState.ProjectFile, opts.CompletionPromise)

		startedAt := time.Now().UTC()
		loopState.Iteration = iteration
		loopState.IterationStartedAt = &startedAt
		loopState.TasksTotal = tasksBefore.Total
		loopState.TasksCompleted = tasksBefore.Completed
		if err := store.Save(loopState); err != nil {
			return r.fail(store, loopState, err, logger)
		}

		logger.Info().
			Int("iteration", iteration).
			Int("tasks_completed", tasksBefore.Completed).
			Int("tasks_total", tasksBefore.Total).
			Msg("iteration started")

		outcome := r.runIteration(ctx, store, loopState, opts, prompt, systemPrompt, startedAt, logger)

		endedAt := time.Now().UTC()
		duration := endedAt.Sub(startedAt)
		loopState.IterationStartedAt = nil

		if outcome.cancelledByCtx {
			return r.finish(store, loopState, models.RalphStatusCancelled, "", logger)
		}

		parsed := harness.ParseResult(outcome.output)
		promiseFound := harness.ContainsPromise(outcome.output, opts.CompletionPromise)
		tasksAfter := project.ReadTaskProgress(loopState.ProjectFile)

		result := models.IterationResult{
			Number:              iteration,
			StartedAt:           startedAt,
			EndedAt:             endedAt,
			DurationSeconds:     duration.Seconds(),
			ExitCode:            outcome.exitCode,
			InputTokens:         parsed.InputTokens,
			OutputTokens:        parsed.OutputTokens,
			CacheReadTokens:     parsed.CacheReadTokens,
			CacheCreationTokens: parsed.CacheCreationTokens,
			CostUSD:             parsed.CostUSD,
			ToolCalls:           parsed.ToolCalls,
			Model:               parsed.Model,
			ResultText:          parsed.ResultText,
			PromiseFound:        promiseFound,
			TimedOut:            outcome.timedOut,
			TasksBefore:         tasksBefore,
			TasksAfter:          tasksAfter,
		}

		loopState.Iterations = append(loopState.Iterations, result)
		loopState.TasksTotal = tasksAfter.Total
		loopState.TasksCompleted = tasksAfter.Completed

		logger.Info().
			Int("iteration", iteration).
			Float64("duration_seconds", result.DurationSeconds).
			Float64("cost_usd", result.CostUSD).
			Int("tasks_completed", tasksAfter.Completed).
			Int("tasks_total", tasksAfter.Total).
			Bool("timed_out", result.TimedOut).
			Msg("iteration finished")

		// Cancel observed mid-iteration or arriving while we assembled
		// the result: the iteration is recorded, but cancelled wins.
		if outcome.cancelledExternally || externalStatus(store) == models.RalphStatusCancelled {
			recordStopReason(loopState, "cancelled")
			return r.finish(store, loopState, models.RalphStatusCancelled, "", logger)
		}

		verdict := Evaluate(loopState, result, evalCfg)
		switch verdict {
		case VerdictCompletedByPromise:
			recordStopReason(loopState, "promise")
			logger.Info().Str("promise", opts.CompletionPromise).Msg("completion promise fulfilled")
			return r.finish(store, loopState, models.RalphStatusCompleted, "", logger)
		case VerdictCompletedByTasks:
			recordStopReason(loopState, "tasks_complete")
			logger.Info().Msg("all tasks completed")
			return r.finish(store, loopState, models.RalphStatusCompleted, "", logger)
		case VerdictMaxReached:
			recordStopReason(loopState, "max_iterations")
			logger.Info().Int("max_iterations", opts.MaxIterations).Msg("max iterations reached")
			return r.finish(store, loopState, models.RalphStatusMaxReached, "", logger)
		}

		// A hard failure from the CLI (not a timeout) is not retryable.
		if outcome.exitCode != 0 && !outcome.timedOut {
			errMsg := fmt.Sprintf("claude exited with code %d", outcome.exitCode)
			if outcome.execErr != nil {
				errMsg = outcome.execErr.Error()
			}
			logger.Error().Int("exit_code", outcome.exitCode).Msg("iteration failed")
			return r.finish(store, loopState, models.RalphStatusError, errMsg, logger)
		}

		if outcome.stopRequested || externalStatus(store) == models.RalphStatusStopping {
			recordStopReason(loopState, "stop_requested")
			logger.Info().Msg("stopped after iteration")
			return r.finish(store, loopState, models.RalphStatusCompleted, "", logger)
		}

		if err := store.Save(loopState); err != nil {
			return r.fail(store, loopState, err, logger)
		}

		sleep(ctx, r.InterIterationPause)
	}
}

// iterationOutcome is the raw result of supervising one subprocess.
type iterationOutcome struct {
	exitCode            int
	output              string
	execErr             error
	timedOut            bool
	stopRequested       bool
	cancelledExternally bool
	cancelledByCtx      bool
}

// runIteration starts the subprocess and supervises it with a poll
// loop. Each tick it checks for external cancel (kill immediately),
// iteration timeout (kill, tag timed_out), and context cancellation;
// on the snapshot interval it refreshes task progress in the state file
// unless a stop/cancel signal was observed in the same fresh read, so a
// snapshot can never overwrite an externally written status.
func (r *Runner) runIteration(ctx context.Context, store *state.Store, loopState *models.RalphState, opts StartOptions, prompt, systemPrompt string, startedAt time.Time, logger zerolog.Logger) iterationOutcome {
	harnessOpts := harness.Options{
		PermissionMode: opts.PermissionMode,
		Model:          opts.Model,
		MaxBudgetUSD:   opts.MaxBudgetUSD,
		Yolo:           opts.Yolo,
	}

	runCtx, kill := context.WithCancel(context.Background())
	defer kill()

	type execResult struct {
		exitCode int
		output   string
		err      error
	}
	resultCh := make(chan execResult, 1)

	go func() {
		exitCode, output, err := r.Exec(runCtx, prompt, systemPrompt, loopState.ProjectPath, harnessOpts)
		resultCh <- execResult{exitCode: exitCode, output: output, err: err}
	}()

	outcome := iterationOutcome{}
	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()
	lastSnapshot := time.Now()

	for {
		select {
		case res := <-resultCh:
			outcome.exitCode = res.exitCode
			outcome.output = res.output
			outcome.execErr = res.err
			return outcome

		case <-ticker.C:
			if ctx.Err() != nil {
				outcome.cancelledByCtx = true
				kill()
				res := <-resultCh
				outcome.exitCode = res.exitCode
				return outcome
			}

			if opts.IterationTimeout > 0 && time.Since(startedAt) >= opts.IterationTimeout {
				logger.Warn().
					Dur("timeout", opts.IterationTimeout).
					Msg("iteration timed out, continuing to next iteration")
				outcome.timedOut = true
				kill()
				res := <-resultCh
				outcome.exitCode = res.exitCode
				return outcome
			}

			// Cancel is honored within one poll tick, stop at the
			// iteration boundary.
			external := externalStatus(store)
			if external == models.RalphStatusCancelled {
				outcome.cancelledExternally = true
				kill()
				res := <-resultCh
				outcome.exitCode = res.exitCode
				return outcome
			}
			if external == models.RalphStatusStopping && !outcome.stopRequested {
				outcome.stopRequested = true
				logger.Info().Msg("stop requested, finishing current iteration")
			}

			if time.Since(lastSnapshot) >= r.SnapshotInterval {
				lastSnapshot = time.Now()
				// Skip the snapshot entirely when a stop signal is
				// pending: an "active" write here would clobber it.
				if external == models.RalphStatusActive {
					mid := project.ReadTaskProgress(loopState.ProjectFile)
					loopState.TasksTotal = mid.Total
					loopState.TasksCompleted = mid.Completed
					if err := store.Save(loopState); err != nil {
						logger.Warn().Err(err).Msg("mid-iteration snapshot failed")
					}
				}
			}
		}
	}
}

// finish records a terminal (or stop-derived) status and persists it.
func (r *Runner) finish(store *state.Store, loopState *models.RalphState, status models.RalphStatus, errMsg string, logger zerolog.Logger) error {
	now := time.Now().UTC()
	loopState.Status = status
	loopState.EndedAt = &now
	loopState.IterationStartedAt = nil
	loopState.ErrorMessage = errMsg

	if err := store.Save(loopState); err != nil {
		logger.Error().Err(err).Msg("failed to persist terminal state")
		return err
	}
	return nil
}

// fail handles a fatal persistence error: best-effort error status, and
// the original error propagates to the caller.
func (r *Runner) fail(store *state.Store, loopState *models.RalphState, cause error, logger zerolog.Logger) error {
	_ = r.finish(store, loopState, models.RalphStatusError, cause.Error(), logger)
	return cause
}

// externalStatus reads the freshest persisted status, tolerating a
// missing or unreadable file.
func externalStatus(store *state.Store) models.RalphStatus {
	external, err := store.Load()
	if err != nil {
		return models.RalphStatusIdle
	}
	return external.Status
}

// readProject reads the project file content and progress in one pass.
func readProject(path string) (string, models.TaskProgress) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", models.TaskProgress{}
	}
	text := string(content)
	return text, project.ParseTaskProgress(text)
}

// recordStopReason tags the most recent iteration with why the loop
// stopped after it.
func recordStopReason(loopState *models.RalphState, reason string) {
	if len(loopState.Iterations) == 0 {
		return
	}
	loopState.Iterations[len(loopState.Iterations)-1].StopReason = reason
}

func defaultExecute(ctx context.Context, prompt, systemPrompt, workDir string, opts harness.Options) (int, string, error) {
	cmd := harness.BuildCommand(ctx, prompt, systemPrompt, workDir, opts)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return exitCodeFromError(err), stdout.String(), err
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func sleep(ctx context.Context, duration time.Duration) {
	if duration <= 0 {
		return
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
