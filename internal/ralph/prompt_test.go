package ralph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPromptListsRemainingTasks(t *testing.T) {
	content := `# Ralph Project: demo

- [x] done task
- [ ] pending task
`
	prompt := BuildPrompt(content)
	require.Contains(t, prompt, content)
	require.Contains(t, prompt, "## Remaining tasks")
	require.Contains(t, prompt, "- pending task")
	require.NotContains(t, prompt, "- done task")
}

func TestBuildPromptNoRemaining(t *testing.T) {
	content := "# Ralph Project: demo\n\n- [x] done task\n"
	require.Equal(t, content, BuildPrompt(content))
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(3, 10, "/work/PROJECT.md", "ALL DONE")
	require.Contains(t, prompt, "iteration 3/10")
	require.Contains(t, prompt, "exactly ONE incomplete task")
	require.Contains(t, prompt, "/work/PROJECT.md")
	require.Contains(t, prompt, "<promise>ALL DONE</promise>")
	require.Contains(t, prompt, "Do not output false promises")
}

func TestBuildSystemPromptUnlimited(t *testing.T) {
	prompt := BuildSystemPrompt(1, 0, "/work/PROJECT.md", "")
	require.Contains(t, prompt, "iteration 1/unlimited")
	require.NotContains(t, prompt, "<promise>")
}
