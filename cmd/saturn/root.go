package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

// exitCode is the process exit code for commands whose outcome is a
// decision rather than an error: 0 allow, 1 warn under strict mode,
// 2 block. Errors exit with 3.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - diff governance engine",
	Long: `Saturn evaluates code changes against governance policies.

It parses unified diffs, applies a typed rule catalogue and reduces the
matches to a single allow/warn/block decision:
  - Sensitive file, secret and keyword detection in changed lines
  - Size thresholds for change sets, migrations and single files
  - Path and line pattern rules with include/exclude modes
  - YAML policy files with merge, validation and hot reload
  - Persistent audit trail and per-rule hit statistics

For more information, visit: https://github.com/mercator-hq/saturn`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
	os.Exit(exitCode)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the configuration file named by --config, or the
// built-in defaults when no file is given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// setupLogger builds the process logger from the configuration and
// installs it as the slog default. --verbose forces debug level.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return logger, nil
}

// formatter returns the output formatter selected by --output.
func formatter() cli.Formatter {
	return cli.NewFormatter(cli.OutputFormat(outputFormat))
}
