package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTaskProgressMixed(t *testing.T) {
	content := `# Project

## Tasks
- [x] Done task
- [ ] Pending task
- [x] Another done
- [ ] Another pending
`
	progress := ParseTaskProgress(content)
	require.Equal(t, 4, progress.Total)
	require.Equal(t, 2, progress.Completed)
}

func TestParseTaskProgressEmpty(t *testing.T) {
	progress := ParseTaskProgress("# Nothing here\n\nJust prose.\n")
	require.Equal(t, 0, progress.Total)
	require.Equal(t, 0, progress.Completed)
}

func TestParseTaskProgressNestedLists(t *testing.T) {
	content := `- [ ] Top level
  - [x] Nested done
    - [ ] Deeply nested
`
	progress := ParseTaskProgress(content)
	require.Equal(t, 3, progress.Total)
	require.Equal(t, 1, progress.Completed)
}

func TestParseTaskProgressCaseInsensitiveX(t *testing.T) {
	content := "- [X] Upper\n- [x] Lower\n- [ ] Open\n"
	progress := ParseTaskProgress(content)
	require.Equal(t, 3, progress.Total)
	require.Equal(t, 2, progress.Completed)
}

func TestParseTaskProgressIgnoresNonChecklist(t *testing.T) {
	content := `- regular bullet
- [y] not a checkbox
-[ ] missing space after dash is still a task
* [ ] wrong bullet char
- [x] real one
`
	progress := ParseTaskProgress(content)
	// `-[ ]` matches because whitespace between dash and bracket is optional.
	require.Equal(t, 2, progress.Total)
	require.Equal(t, 1, progress.Completed)
}

func TestParseTaskProgressInvariants(t *testing.T) {
	samples := []string{
		"",
		"- [ ] a\n- [x] b",
		"- [x] only done",
		"garbage\x00bytes",
	}
	for _, sample := range samples {
		progress := ParseTaskProgress(sample)
		require.GreaterOrEqual(t, progress.Total, 0)
		require.GreaterOrEqual(t, progress.Completed, 0)
		require.LessOrEqual(t, progress.Completed, progress.Total)
	}
}

func TestReadTaskProgressMissingFile(t *testing.T) {
	progress := ReadTaskProgress(filepath.Join(t.TempDir(), "absent.md"))
	require.Equal(t, 0, progress.Total)
	require.Equal(t, 0, progress.Completed)
}

func TestReadTaskProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.md")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] a\n- [x] b\n"), 0o644))

	progress := ReadTaskProgress(path)
	require.Equal(t, 2, progress.Total)
	require.Equal(t, 1, progress.Completed)
}

func TestRemainingTasks(t *testing.T) {
	content := "- [x] done\n- [ ] write docs\n- [ ] ship it\n"
	tasks := RemainingTasks(content)
	require.Equal(t, []string{"write docs", "ship it"}, tasks)
}

func TestInitProjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ralph-project.md")
	require.NoError(t, InitProjectFile(path, "Widget"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "# Ralph Project: Widget")
	require.Contains(t, string(content), "- [ ] First task")

	progress := ParseTaskProgress(string(content))
	require.Equal(t, 3, progress.Total)
	require.Equal(t, 0, progress.Completed)
}

func TestInitProjectFileDefaultName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ralph-project.md")
	require.NoError(t, InitProjectFile(path, ""))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "# Ralph Project: My Project")
}

func TestParseTasks(t *testing.T) {
	content := "# heading\n- [x] done\n- [ ] write docs\nnot a task\n"
	tasks := ParseTasks(content)
	require.Equal(t, []Task{
		{Text: "done", Done: true},
		{Text: "write docs", Done: false},
	}, tasks)
}
