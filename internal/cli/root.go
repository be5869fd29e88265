// Package cli implements the ralph command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tOgg1/ralph/internal/config"
	"github.com/tOgg1/ralph/internal/logging"
)

var (
	// Global flags
	cfgFile    string
	jsonOutput bool
	verbose    bool
	noColor    bool
	logLevel   string
	logFormat  string

	// Global config loader and config
	configLoader *config.Loader
	appConfig    *config.Config
	logger       zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ralph",
	Short: "Iterative claude automation loop",
	Long: `Ralph runs the claude CLI in a loop against a markdown task checklist,
one task per iteration, until every task is checked off or a completion
promise is emitted.

Typical workflow:
  ralph init            create a PROJECT.md template
  ralph start           run the loop
  ralph monitor         watch a running loop from another terminal
  ralph stop            finish the current iteration, then exit
  ralph cancel          kill the loop immediately`,
}

// Execute runs the root command.
func Execute(version, commit, date string) error {
	rootCmd.Version = formatVersion(version, commit, date)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		return handleCLIError(err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ralph/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (json, console)")
}

// initConfig loads configuration with the usual precedence:
// defaults < config file < env vars < CLI flags.
func initConfig() {
	configLoader = config.NewLoader()
	if cfgFile != "" {
		configLoader.SetConfigFile(cfgFile)
	}

	var err error
	appConfig, err = configLoader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	applyCLIOverrides()
	initLogging()

	if err := appConfig.EnsureDirectories(); err != nil {
		logger.Warn().Err(err).Msg("failed to create directories")
	}

	if cfgUsed := configLoader.ConfigFileUsed(); cfgUsed != "" {
		logger.Debug().Str("config_file", cfgUsed).Msg("loaded config file")
	}
}

func applyCLIOverrides() {
	flags := rootCmd.PersistentFlags()

	if flags.Changed("log-level") {
		appConfig.Logging.Level = logLevel
	} else if verbose {
		appConfig.Logging.Level = "debug"
	}

	if flags.Changed("log-format") {
		appConfig.Logging.Format = logFormat
	}
}

func initLogging() {
	logCfg := logging.Config{
		Level:        appConfig.Logging.Level,
		Format:       appConfig.Logging.Format,
		Output:       os.Stderr,
		EnableCaller: appConfig.Logging.EnableCaller,
	}
	logging.Init(logCfg)
	logger = logging.Component("cli")
}

func formatVersion(version, commit, date string) string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
