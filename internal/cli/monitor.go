package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/monitor"
)

var monitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor [project-dir]",
	Short: "Watch a running loop in a live dashboard",
	Long: `Monitor renders a live dashboard for the loop in the given project:
status, task checklist, per-iteration cost and token totals. It reads
the state file only and can be left running after the loop exits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := resolveProjectRoot(args)
		if err != nil {
			return err
		}

		interval := appConfig.Monitor.RefreshInterval
		if cmd.Flags().Changed("interval") {
			interval = monitorInterval
		}

		return monitor.Run(monitor.Config{
			ProjectPath:     projectRoot,
			RefreshInterval: interval,
			IterationsShown: appConfig.Monitor.MaxIterationsVisible,
			HideTasks:       !appConfig.Monitor.ShowTaskProgress,
		})
	},
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "refresh interval (e.g. 500ms, 2s)")
	rootCmd.AddCommand(monitorCmd)
}
