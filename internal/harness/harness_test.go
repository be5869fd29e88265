package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildArgsBasic(t *testing.T) {
	args := BuildArgs("do the thing", "system text", Options{PermissionMode: "acceptEdits"})

	require.Equal(t, []string{
		"-p", "do the thing",
		"--append-system-prompt", "system text",
		"--output-format", "json",
		"--permission-mode", "acceptEdits",
	}, args)
}

func TestBuildArgsWithModelAndBudget(t *testing.T) {
	args := BuildArgs("p", "s", Options{
		PermissionMode: "plan",
		Model:          "opus",
		MaxBudgetUSD:   2.5,
	})

	require.Contains(t, args, "--model")
	require.Contains(t, args, "opus")
	require.Contains(t, args, "--max-budget-usd")
	require.Contains(t, args, "2.5")
}

func TestBuildArgsYolo(t *testing.T) {
	args := BuildArgs("p", "s", Options{PermissionMode: "acceptEdits", Yolo: true})

	require.Contains(t, args, "--dangerously-skip-permissions")
	require.NotContains(t, args, "--permission-mode")
}

func TestBuildArgsOmitsOptionalFlags(t *testing.T) {
	args := BuildArgs("p", "s", Options{PermissionMode: "acceptEdits"})

	require.NotContains(t, args, "--model")
	require.NotContains(t, args, "--max-budget-usd")
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	cmd := BuildCommand(context.Background(), "p", "s", dir, Options{PermissionMode: "acceptEdits"})

	require.Equal(t, dir, cmd.Dir)
	require.NotEmpty(t, cmd.Args)
	require.Contains(t, cmd.Args[0], "claude")
}

func TestEnvDerivesTaskListID(t *testing.T) {
	env := Env([]string{"PATH=/usr/bin", "CCTMUX_SESSION=my-project"})
	require.Contains(t, env, "CLAUDE_CODE_TASK_LIST_ID=my-project")
}

func TestEnvKeepsExplicitTaskListID(t *testing.T) {
	env := Env([]string{"CLAUDE_CODE_TASK_LIST_ID=explicit", "CCTMUX_SESSION=other"})
	require.Contains(t, env, "CLAUDE_CODE_TASK_LIST_ID=explicit")
	require.NotContains(t, env, "CLAUDE_CODE_TASK_LIST_ID=other")
}

func TestEnvNoSession(t *testing.T) {
	base := []string{"PATH=/usr/bin"}
	env := Env(base)
	require.Equal(t, base, env)
}
