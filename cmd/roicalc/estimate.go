package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/cli"
	"deflect-hq/roicalc/pkg/config"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
)

var estimateFlags struct {
	volume int
	plan   string
	preset string
	format string
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate monthly savings for a plan",
	Long: `Compute the monthly cost breakdown for a plan at a given interaction volume.

Volumes above the plan's cap are clamped to the cap and reported as such.

Examples:
  # Default plan at the default volume
  roicalc estimate

  # Scale plan at 1,500 interactions a month
  roicalc estimate --plan scale --volume 1500

  # Machine-readable output
  roicalc estimate --plan growth --volume 500 --format json`,
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().IntVarP(&estimateFlags.volume, "volume", "n", 0, "monthly interactions (default calculator.default_volume)")
	estimateCmd.Flags().StringVarP(&estimateFlags.plan, "plan", "p", "", "plan ID (default calculator.default_plan or the catalog default)")
	estimateCmd.Flags().StringVar(&estimateFlags.preset, "preset", "", "cost preset (default calculator.preset)")
	estimateCmd.Flags().StringVarP(&estimateFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	volume := cfg.Calculator.DefaultVolume
	if cmd.Flags().Changed("volume") {
		volume = estimateFlags.volume
	}

	report, err := estimate(cfg, catalog, volume, estimateFlags.plan, estimateFlags.preset)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), estimateFlags.format, report)
}

// estimate resolves the plan and preset, falling back to cfg, and computes
// the report.
func estimate(cfg *config.Config, catalog *plans.Catalog, volume int, planID, presetName string) (cli.EstimateReport, error) {
	if volume < 0 {
		return cli.EstimateReport{}, cli.NewConfigError("volume", fmt.Sprintf("must not be negative, got %d", volume))
	}

	plan, err := resolvePlan(cfg, catalog, planID)
	if err != nil {
		return cli.EstimateReport{}, err
	}

	if presetName == "" {
		presetName = cfg.Calculator.Preset
	}
	preset, err := costmodel.PresetByName(presetName)
	if err != nil {
		return cli.EstimateReport{}, cli.WrapConfigError("preset", "unknown cost preset", err)
	}

	return cli.NewEstimateReport(volume, plan, preset), nil
}

func resolvePlan(cfg *config.Config, catalog *plans.Catalog, id string) (plans.Plan, error) {
	if id == "" {
		id = cfg.Calculator.DefaultPlan
	}
	if id == "" {
		return catalog.Default(), nil
	}
	plan, err := catalog.Lookup(id)
	if err != nil {
		return plans.Plan{}, cli.WrapConfigError("plan", "unknown plan", err)
	}
	return plan, nil
}
