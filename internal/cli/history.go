package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/db"
	"github.com/tOgg1/ralph/internal/models"
)

var (
	historyLimit int
	historyAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history [project-dir]",
	Short: "List finished loop runs",
	Long: `History lists finished runs recorded in the database, newest first.
By default only runs for the given project (default: current directory)
are shown; --all lists runs across every project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(db.Config{
			Path:          appConfig.DatabasePath(),
			MaxOpenConns:  appConfig.Database.MaxConnections,
			BusyTimeoutMs: appConfig.Database.BusyTimeoutMs,
		})
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate history database: %w", err)
		}

		repo := db.NewRunRepository(database)
		var runs []*models.RunRecord
		if historyAll {
			runs, err = repo.List(ctx, historyLimit)
		} else {
			var projectRoot string
			projectRoot, err = resolveProjectRoot(args)
			if err != nil {
				return err
			}
			runs, err = repo.ListByProject(ctx, projectRoot, historyLimit)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(os.Stdout, runs)
		}

		if len(runs) == 0 {
			fmt.Println(colorFaint("No recorded runs."))
			return nil
		}

		printRunTable(runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show (0 = no limit)")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "show runs for all projects")
	rootCmd.AddCommand(historyCmd)
}

func printRunTable(runs []*models.RunRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tITER\tTASKS\tCOST\tPROJECT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t$%.4f\t%s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			run.Iterations,
			run.TasksCompleted, run.TasksTotal,
			run.CostUSD,
			run.ProjectPath,
		)
	}
	_ = w.Flush()
}
