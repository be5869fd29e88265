// Package config handles Ralph configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for Ralph.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Loop defaults applied when flags are not given.
	Loop LoopConfig `yaml:"loop" mapstructure:"loop"`

	// Monitor settings
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
}

// GlobalConfig contains global Ralph settings.
type GlobalConfig struct {
	// DataDir is where Ralph stores its data (default: ~/.local/share/ralph).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/ralph).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains run-history database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// MaxConnections is the maximum number of database connections.
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// LoopConfig contains default settings for loop runs.
type LoopConfig struct {
	// PermissionMode is passed to the claude CLI (acceptEdits, plan, ...).
	PermissionMode string `yaml:"permission_mode" mapstructure:"permission_mode"`

	// Model selects the claude model ("" = CLI default).
	Model string `yaml:"model" mapstructure:"model"`

	// MaxIterations caps iterations per run (0 = unlimited).
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`

	// IterationTimeout is the max duration of one iteration (0 = none).
	IterationTimeout time.Duration `yaml:"iteration_timeout" mapstructure:"iteration_timeout"`

	// MaxBudgetUSD caps spend per iteration (0 = none).
	MaxBudgetUSD float64 `yaml:"max_budget_usd" mapstructure:"max_budget_usd"`

	// PollInterval is how often the runner polls the subprocess.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// SnapshotInterval is how often mid-iteration state snapshots are saved.
	SnapshotInterval time.Duration `yaml:"snapshot_interval" mapstructure:"snapshot_interval"`

	// Yolo uses --dangerously-skip-permissions instead of --permission-mode.
	Yolo bool `yaml:"yolo" mapstructure:"yolo"`
}

// MonitorConfig contains monitor dashboard settings.
type MonitorConfig struct {
	// RefreshInterval is how often the monitor polls the state file.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// MaxIterationsVisible limits rows in the iteration table.
	MaxIterationsVisible int `yaml:"max_iterations_visible" mapstructure:"max_iterations_visible"`

	// ShowTaskProgress toggles the task checklist panel.
	ShowTaskProgress bool `yaml:"show_task_progress" mapstructure:"show_task_progress"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "ralph"),
			ConfigDir: filepath.Join(homeDir, ".config", "ralph"),
		},
		Database: DatabaseConfig{
			Path:           "", // Will be set to DataDir/ralph.db
			MaxConnections: 10,
			BusyTimeoutMs:  5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Loop: LoopConfig{
			PermissionMode:   "acceptEdits",
			MaxIterations:    0,
			IterationTimeout: 0,
			PollInterval:     1 * time.Second,
			SnapshotInterval: 5 * time.Second,
		},
		Monitor: MonitorConfig{
			RefreshInterval:      1 * time.Second,
			MaxIterationsVisible: 20,
			ShowTaskProgress:     true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be at least 1")
	}

	if c.Loop.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("loop.poll_interval must be at least 100ms")
	}

	if c.Loop.SnapshotInterval < c.Loop.PollInterval {
		return fmt.Errorf("loop.snapshot_interval must be at least loop.poll_interval")
	}

	if c.Loop.MaxIterations < 0 {
		return fmt.Errorf("loop.max_iterations must be >= 0")
	}

	if c.Loop.MaxBudgetUSD < 0 {
		return fmt.Errorf("loop.max_budget_usd must be >= 0")
	}

	if c.Monitor.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("monitor.refresh_interval must be at least 100ms")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "ralph.db")
}
