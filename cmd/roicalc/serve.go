package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/cli"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/server"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the calculator HTTP server",
	Long: `Start the calculator HTTP server with the specified configuration.

The server exposes the plan catalog, one-off estimates and the homepage teaser
as a JSON API, keeps interactive calculator sessions that stream animation
frames over WebSocket, and renders an embeddable HTML widget.

Examples:
  # Start with built-in defaults
  roicalc serve

  # Start with a config file
  roicalc serve --config /etc/roicalc/config.yaml

  # Override listen address
  roicalc serve --listen 0.0.0.0:8080

  # Validate config without starting server
  roicalc serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := newLogger(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Options{
		Logger: logger,
		Source: plans.NewSource(catalog),
		Build: server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})
	if err != nil {
		return cli.WrapConfigError("calculator", "invalid server settings", err)
	}

	out := cmd.OutOrStdout()
	if serveFlags.dryRun {
		fmt.Fprintf(out, "✓ Configuration valid (catalog %s, %d plans)\n", catalog.Version(), catalog.Len())
		return nil
	}

	fmt.Fprintf(out, "roicalc v%s\n", Version)
	fmt.Fprintf(out, "✓ Plan catalog %s loaded (%d plans)\n", catalog.Version(), catalog.Len())
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Widget: http://%s/calculator\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(context.Background()); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}
