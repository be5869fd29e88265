// Package harness prepares and interprets claude CLI invocations.
package harness

import (
	"context"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables consumed when building the subprocess env.
const (
	taskListIDEnv = "CLAUDE_CODE_TASK_LIST_ID"
	sessionEnv    = "CCTMUX_SESSION"
)

// Options configure a single claude invocation.
type Options struct {
	// PermissionMode is passed via --permission-mode (ignored with Yolo).
	PermissionMode string

	// Model selects the model ("" = CLI default).
	Model string

	// MaxBudgetUSD caps spend for this invocation (0 = no cap).
	MaxBudgetUSD float64

	// Yolo replaces --permission-mode with --dangerously-skip-permissions.
	Yolo bool
}

// BuildArgs returns the claude CLI argument list for one iteration.
func BuildArgs(prompt, systemPrompt string, opts Options) []string {
	args := []string{
		"-p", prompt,
		"--append-system-prompt", systemPrompt,
		"--output-format", "json",
	}

	switch {
	case opts.Yolo:
		args = append(args, "--dangerously-skip-permissions")
	case opts.PermissionMode != "":
		args = append(args, "--permission-mode", opts.PermissionMode)
	}

	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}

	if opts.MaxBudgetUSD > 0 {
		args = append(args, "--max-budget-usd", strconv.FormatFloat(opts.MaxBudgetUSD, 'f', -1, 64))
	}

	return args
}

// BuildCommand prepares the claude subprocess for one iteration.
// The command is not started; the caller owns its lifecycle.
func BuildCommand(ctx context.Context, prompt, systemPrompt, workDir string, opts Options) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "claude", BuildArgs(prompt, systemPrompt, opts)...)
	cmd.Dir = workDir
	cmd.Env = Env(os.Environ())
	return cmd
}

// Env derives the subprocess environment from base. It ensures
// CLAUDE_CODE_TASK_LIST_ID is set so the subprocess scopes its tasks to
// the current run: when unset, the value is derived from CCTMUX_SESSION
// (the sanitized session name the surrounding tooling exports).
func Env(base []string) []string {
	env := append([]string{}, base...)

	session := ""
	for _, entry := range env {
		key, value, ok := splitEnv(entry)
		if !ok {
			continue
		}
		if key == taskListIDEnv {
			return env
		}
		if key == sessionEnv {
			session = value
		}
	}

	if session != "" {
		env = append(env, taskListIDEnv+"="+session)
	}
	return env
}

func splitEnv(entry string) (key, value string, ok bool) {
	for i := 0; i < len(entry); i++ {
		if entry[i] == '=' {
			return entry[:i], entry[i+1:], true
		}
	}
	return "", "", false
}
