package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/cli"
	"deflect-hq/roicalc/pkg/config"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile     string
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "roicalc",
	Short: "Support automation ROI calculator",
	Long: `roicalc compares the monthly cost of handling support interactions with
human agents against the cost of a subscription plan, and reports the savings.

It serves an interactive calculator (JSON API, WebSocket frame stream and an
embeddable HTML widget), runs the same calculator in the terminal, and answers
one-off estimates from the command line.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "plan catalog file, YAML or TOML (overrides catalog.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig initializes the global configuration and applies the global
// flag overrides.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.WrapConfigError("config", "failed to load config", err)
	}
	cfg := config.GetConfig()

	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// loadCatalog loads the configured plan catalog.
func loadCatalog(cfg *config.Config) (*plans.Catalog, error) {
	catalog, err := plans.LoadOrDefault(cfg.Catalog.Path)
	if err != nil {
		return nil, cli.WrapConfigError("catalog.path", "failed to load plan catalog", err)
	}
	return catalog, nil
}

// newLogger builds the logger described by cfg writing to w.
func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Writer:    w,
	})
	if err != nil {
		return nil, cli.WrapConfigError("telemetry.logging", "invalid logging settings", err)
	}
	return logger, nil
}

// writeResult prints data in the format named by the --format flag.
func writeResult(w io.Writer, format string, data any) error {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(f).FormatTo(w, data)
}
