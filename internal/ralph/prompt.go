package ralph

import (
	"fmt"
	"strings"

	"github.com/tOgg1/ralph/internal/project"
)

// BuildPrompt assembles the main prompt for one iteration: the project
// file content followed by the currently unchecked tasks, so the
// assistant sees both the full context and what remains.
func BuildPrompt(projectContent string) string {
	remaining := project.RemainingTasks(projectContent)
	if len(remaining) == 0 {
		return projectContent
	}

	var builder strings.Builder
	builder.WriteString(projectContent)
	builder.WriteString("\n\n## Remaining tasks\n")
	for _, task := range remaining {
		builder.WriteString("- ")
		builder.WriteString(task)
		builder.WriteString("\n")
	}
	return builder.String()
}

// BuildSystemPrompt builds the --append-system-prompt addition carrying
// the loop instructions. Each iteration addresses exactly one task to
// keep the context window bounded per invocation.
func BuildSystemPrompt(iteration, maxIterations int, projectFilePath, completionPromise string) string {
	maxStr := "unlimited"
	if maxIterations > 0 {
		maxStr = fmt.Sprintf("%d", maxIterations)
	}

	lines := []string{
		fmt.Sprintf("You are executing iteration %d/%s of a Ralph Loop automation.", iteration, maxStr),
		"",
		"INSTRUCTIONS:",
		"1. Read the project file content above. Tasks marked `- [ ]` are incomplete.",
		"   Tasks marked `- [x]` are complete.",
		"2. Work on exactly ONE incomplete task this iteration. Focus on quality",
		"   over quantity; the loop will come back for the rest.",
		fmt.Sprintf("3. After completing the task, update the project file (%s) by", projectFilePath),
		"   changing `- [ ]` to `- [x]` for that task.",
		"4. Run verification steps (tests, linting) as appropriate.",
	}

	if completionPromise != "" {
		lines = append(lines,
			fmt.Sprintf("5. When ALL tasks are complete, output exactly: <promise>%s</promise>", completionPromise),
			"",
			"CRITICAL: Only output the promise tag when the statement is genuinely true.",
			"Do not output false promises to exit the loop.",
		)
	}

	return strings.Join(lines, "\n")
}
