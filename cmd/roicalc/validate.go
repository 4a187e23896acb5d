package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/cli"
	"deflect-hq/roicalc/pkg/config"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/telemetry/logging"
)

var validateFormat string

// ValidationResult is the outcome of one validation check.
type ValidationResult struct {
	Check  string   `json:"check"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationReport collects every check run by validate.
type ValidationReport struct {
	Results []ValidationResult `json:"results"`
}

// Valid reports whether every check passed.
func (r ValidationReport) Valid() bool {
	for _, res := range r.Results {
		if !res.Valid {
			return false
		}
	}
	return true
}

// Text implements cli.Texter.
func (r ValidationReport) Text() string {
	var out string
	failures := 0
	for _, res := range r.Results {
		if res.Valid {
			out += fmt.Sprintf("✓ %s\n", res.Check)
			continue
		}
		for _, e := range res.Errors {
			out += fmt.Sprintf("✗ %s: %s\n", res.Check, e)
			failures++
		}
	}
	out += fmt.Sprintf("\nSummary:\n  %d check(s), %d error(s)\n", len(r.Results), failures)
	return out
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and plan catalog",
	Long: `Check that the configuration file, the plan catalog and the calculator
settings fit together without starting anything.

It verifies:
  - the config file parses and passes validation
  - the plan catalog loads and has a valid default plan
  - the cost presets exist
  - a calculator can be built from the settings

Examples:
  roicalc validate --config config.yaml
  roicalc validate --catalog plans.toml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := validateAll()
		if err := writeResult(cmd.OutOrStdout(), validateFormat, report); err != nil {
			return err
		}
		if !report.Valid() {
			return cli.NewConfigError("validate", "validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "output format: text, json")
}

func validateAll() ValidationReport {
	var report ValidationReport

	cfg, err := loadConfig()
	report.Results = append(report.Results, check("configuration", err))
	if err != nil {
		return report
	}

	catalog, err := loadCatalog(cfg)
	report.Results = append(report.Results, check("plan catalog", err))
	if err != nil {
		return report
	}

	report.Results = append(report.Results, validateCalculator(cfg, catalog))
	return report
}

// validateCalculator checks the presets and builds a throwaway controller
// from the calculator settings.
func validateCalculator(cfg *config.Config, catalog *plans.Catalog) ValidationResult {
	var errs []error

	preset, err := costmodel.PresetByName(cfg.Calculator.Preset)
	errs = append(errs, err)
	teaser, err := costmodel.TeaserPresetByName(cfg.Calculator.TeaserPreset)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return check("calculator settings", err)
	}

	c := cfg.Calculator
	ctrl, err := calculator.New(catalog,
		calculator.WithPreset(preset),
		calculator.WithTeaserPreset(teaser),
		calculator.WithSlider(c.Slider.Min, c.Slider.Max, c.Slider.Step),
		calculator.WithDefaults(c.DefaultPlan, c.DefaultVolume),
		calculator.WithLogger(logging.Discard()),
	)
	if err == nil {
		ctrl.Close()
	}
	return check("calculator settings", err)
}

func check(name string, err error) ValidationResult {
	res := ValidationResult{Check: name, Valid: err == nil}
	if err != nil {
		res.Errors = splitErrors(err)
	}
	return res
}

// splitErrors flattens errors.Join trees into one message per leaf.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

