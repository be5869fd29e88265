package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/ralph"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-dir]",
	Short: "Show the state of the ralph loop in a project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := resolveProjectRoot(args)
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

		fmt.Println(statusBanner(loopState.Status))
		printStateSummary(os.Stdout, loopState)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// resolveProjectRoot turns an optional positional argument into an
// absolute project directory, defaulting to the working directory.
func resolveProjectRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid project directory: %w", err)
	}
	return abs, nil
}

// projectRootFor returns the project directory containing a project file.
func projectRootFor(projectFile string) (string, error) {
	abs, err := filepath.Abs(projectFile)
	if err != nil {
		return "", fmt.Errorf("invalid project file path: %w", err)
	}
	return filepath.Dir(abs), nil
}

func printStateSummary(w io.Writer, s *models.RalphState) {
	maxStr := "unlimited"
	if s.MaxIterations > 0 {
		maxStr = fmt.Sprintf("%d", s.MaxIterations)
	}

	printKV(w, "Status", string(s.Status))
	printKV(w, "Project", s.ProjectFile)
	printKV(w, "Iterations", fmt.Sprintf("%d (max %s)", len(s.Iterations), maxStr))
	printKV(w, "Tasks", fmt.Sprintf("%d/%d", s.TasksCompleted, s.TasksTotal))

	in, out := s.TotalTokens()
	printKV(w, "Tokens", fmt.Sprintf("%d in / %d out", in, out))
	printKV(w, "Cost", fmt.Sprintf("$%.4f", s.TotalCostUSD()))
	printKV(w, "Started", s.StartedAt.Local().Format(time.RFC1123))
	if s.EndedAt != nil {
		printKV(w, "Ended", s.EndedAt.Local().Format(time.RFC1123))
		printKV(w, "Duration", s.EndedAt.Sub(s.StartedAt).Round(time.Second).String())
	}
	if s.ErrorMessage != "" {
		printKV(w, "Error", colorError(s.ErrorMessage))
	}
}
