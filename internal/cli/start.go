package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/db"
	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/ralph"
)

var (
	startMaxIterations  int
	startPromise        string
	startPermissionMode string
	startModel          string
	startMaxBudget      float64
	startTimeout        time.Duration
	startYolo           bool
)

var startCmd = &cobra.Command{
	Use:   "start [project-file]",
	Short: "Run the ralph loop against a project file",
	Long: `Start runs claude iteratively against the given project file
(default ./PROJECT.md) until every checklist task is done, the
completion promise is emitted, or the iteration cap is reached.

The command blocks until the loop finishes. Use 'ralph stop' or
'ralph cancel' from another terminal to interrupt it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVarP(&startMaxIterations, "max-iterations", "m", 0, "maximum iterations (0 = unlimited)")
	startCmd.Flags().StringVarP(&startPromise, "completion-promise", "c", "", "stop when claude outputs <promise>TEXT</promise>")
	startCmd.Flags().StringVar(&startPermissionMode, "permission-mode", "", "claude permission mode (acceptEdits, plan, ...)")
	startCmd.Flags().StringVar(&startModel, "model", "", "claude model override")
	startCmd.Flags().Float64Var(&startMaxBudget, "max-budget", 0, "per-iteration budget cap in USD")
	startCmd.Flags().DurationVar(&startTimeout, "timeout", 0, "per-iteration timeout (e.g. 15m)")
	startCmd.Flags().BoolVar(&startYolo, "yolo", false, "run claude with --dangerously-skip-permissions")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	projectFile := "PROJECT.md"
	if len(args) > 0 {
		projectFile = args[0]
	}

	opts := ralph.StartOptions{
		ProjectFile:       projectFile,
		MaxIterations:     appConfig.Loop.MaxIterations,
		PermissionMode:    appConfig.Loop.PermissionMode,
		Model:             appConfig.Loop.Model,
		MaxBudgetUSD:      appConfig.Loop.MaxBudgetUSD,
		IterationTimeout:  appConfig.Loop.IterationTimeout,
		CompletionPromise: startPromise,
		Yolo:              appConfig.Loop.Yolo,
	}

	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		opts.MaxIterations = startMaxIterations
	}
	if flags.Changed("permission-mode") {
		opts.PermissionMode = startPermissionMode
	}
	if flags.Changed("model") {
		opts.Model = startModel
	}
	if flags.Changed("max-budget") {
		opts.MaxBudgetUSD = startMaxBudget
	}
	if flags.Changed("timeout") {
		opts.IterationTimeout = startTimeout
	}
	if flags.Changed("yolo") {
		opts.Yolo = startYolo
	}

	runner := ralph.NewRunner(appConfig)
	attachRunRecorder(runner)

	// Ctrl+C cancels the loop; the state file records cancelled.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, opts); err != nil {
		return err
	}

	return printFinalState(opts.ProjectFile)
}

// attachRunRecorder wires finished runs into the history database.
// History is best-effort; a broken database never fails the loop.
func attachRunRecorder(runner *ralph.Runner) {
	runner.RunRecorder = func(ctx context.Context, loopState *models.RalphState) {
		database, err := db.Open(db.Config{
			Path:          appConfig.DatabasePath(),
			MaxOpenConns:  appConfig.Database.MaxConnections,
			BusyTimeoutMs: appConfig.Database.BusyTimeoutMs,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to open history database")
			return
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to migrate history database")
			return
		}

		record := models.NewRunRecord(loopState)
		if err := db.NewRunRepository(database).Create(ctx, record); err != nil {
			logger.Warn().Err(err).Msg("failed to record run history")
		}
	}
}

func printFinalState(projectFile string) error {
	projectRoot, err := projectRootFor(projectFile)
	if err != nil {
		return err
	}

	loopState, err := ralph.GetStatus(projectRoot)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, loopState)
	}

	fmt.Println()
	fmt.Println(statusBanner(loopState.Status))
	printStateSummary(os.Stdout, loopState)
	return nil
}

func statusBanner(status models.RalphStatus) string {
	switch status {
	case models.RalphStatusCompleted:
		return colorSuccess("✓ Loop completed")
	case models.RalphStatusMaxReached:
		return colorWarn("◆ Max iterations reached")
	case models.RalphStatusCancelled:
		return colorWarn("✗ Loop cancelled")
	case models.RalphStatusError:
		return colorError("✗ Loop failed")
	default:
		return string(status)
	}
}
