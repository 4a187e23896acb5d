package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/analytics"
	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/cli"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
	"deflect-hq/roicalc/pkg/tui"
)

var tuiFlags struct {
	plan    string
	volume  int
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive calculator in the terminal",
	Long: `Run the calculator as a terminal UI with the same animated results as the
web widget.

Keys:
  ←/→ h/l -/+   move the volume by one slider step
  ↑/↓ k/j       previous/next plan
  1-9           select a plan
  t             toggle the homepage teaser
  q esc ctrl+c  quit

The terminal is taken over by the UI, so logs are discarded unless --log-file
is given.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVarP(&tuiFlags.plan, "plan", "p", "", "initial plan ID")
	tuiCmd.Flags().IntVarP(&tuiFlags.volume, "volume", "n", 0, "initial monthly interactions")
	tuiCmd.Flags().StringVar(&tuiFlags.logFile, "log-file", "", "write logs to this file")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if tuiFlags.logFile != "" {
		f, err := os.OpenFile(tuiFlags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return cli.WrapConfigError("log-file", "cannot open log file", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(cfg.Telemetry.Logging, logOut)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	c := cfg.Calculator
	preset, err := costmodel.PresetByName(c.Preset)
	if err != nil {
		return cli.WrapConfigError("calculator.preset", "unknown cost preset", err)
	}
	teaser, err := costmodel.TeaserPresetByName(c.TeaserPreset)
	if err != nil {
		return cli.WrapConfigError("calculator.teaser_preset", "unknown teaser preset", err)
	}

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	tracker, err := analytics.FromConfig(cfg.Analytics, logger, collector)
	if err != nil {
		return cli.WrapConfigError("analytics", "invalid analytics settings", err)
	}

	planID := c.DefaultPlan
	if tuiFlags.plan != "" {
		planID = tuiFlags.plan
	}
	volume := c.DefaultVolume
	if cmd.Flags().Changed("volume") {
		volume = tuiFlags.volume
	}

	ctrl, err := calculator.New(catalog,
		calculator.WithPreset(preset),
		calculator.WithTeaserPreset(teaser),
		calculator.WithSlider(c.Slider.Min, c.Slider.Max, c.Slider.Step),
		calculator.WithDefaults(planID, volume),
		calculator.WithDuration(c.AnimationDuration),
		calculator.WithTracker(tracker),
		calculator.WithDebounce(cfg.Analytics.Debounce),
		calculator.WithLogger(logger),
		calculator.WithMetrics(collector, metrics.SourceTUI),
	)
	if err != nil {
		return cli.WrapConfigError("plan", fmt.Sprintf("cannot start calculator on %q", planID), err)
	}
	defer ctrl.Close()

	if err := tui.Run(ctrl, c.FrameInterval); err != nil {
		return cli.NewCommandError("tui", err)
	}
	return nil
}
