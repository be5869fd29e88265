package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	require.Equal(t, "acceptEdits", cfg.Loop.PermissionMode)
	require.Equal(t, 0, cfg.Loop.MaxIterations)
	require.Equal(t, 1*time.Second, cfg.Loop.PollInterval)
	require.Equal(t, 5*time.Second, cfg.Loop.SnapshotInterval)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Contains(t, cfg.DatabasePath(), "ralph.db")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
loop:
  permission_mode: plan
  max_iterations: 7
  iteration_timeout: 30m
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "plan", cfg.Loop.PermissionMode)
	require.Equal(t, 7, cfg.Loop.MaxIterations)
	require.Equal(t, 30*time.Minute, cfg.Loop.IterationTimeout)
	require.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys fall back to defaults.
	require.Equal(t, 1*time.Second, cfg.Monitor.RefreshInterval)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := loader.Load()
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RALPH_LOOP_PERMISSION_MODE", "bypassPermissions")
	t.Setenv("RALPH_LOGGING_FORMAT", "json")

	cfg, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, "bypassPermissions", cfg.Loop.PermissionMode)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Loop.PollInterval = 10 * time.Millisecond
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Loop.SnapshotInterval = 500 * time.Millisecond
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Database.MaxConnections = 0
	require.Error(t, cfg.Validate())
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, "x"), expandTilde("~/x"))
	require.Equal(t, home, expandTilde("~"))
	require.Equal(t, "/abs/path", expandTilde("/abs/path"))
	require.Equal(t, "", expandTilde(""))
}
