package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/project"
)

var initName string

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a project file template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "PROJECT.md"
		if len(args) > 0 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		if _, err := os.Stat(abs); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		if err := project.InitProjectFile(abs, initName); err != nil {
			return fmt.Errorf("failed to write project file: %w", err)
		}

		fmt.Println(colorSuccess("Created ") + abs)
		fmt.Println(colorFaint("Edit the task list, then run 'ralph start'."))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name for the template heading")
	rootCmd.AddCommand(initCmd)
}
