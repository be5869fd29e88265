package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/ralph"
)

var stopCmd = &cobra.Command{
	Use:   "stop [project-dir]",
	Short: "Ask the loop to finish the current iteration and exit",
	Long: `Stop is graceful: the running iteration is allowed to finish and its
result is recorded before the loop exits with completed status. Use
'ralph cancel' to kill the subprocess immediately instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := resolveProjectRoot(args)
		if err != nil {
			return err
		}

		if err := ralph.RequestStop(projectRoot); err != nil {
			return err
		}

		fmt.Println(colorSuccess("Stop requested.") + " The loop will exit after the current iteration.")
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [project-dir]",
	Short: "Kill the loop immediately",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := resolveProjectRoot(args)
		if err != nil {
			return err
		}

		if err := ralph.RequestCancel(projectRoot); err != nil {
			return err
		}

		fmt.Println(colorWarn("Cancel requested.") + " The subprocess will be killed within a second.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(cancelCmd)
}
