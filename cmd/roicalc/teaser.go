package main

import (
	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/cli"
	"deflect-hq/roicalc/pkg/costmodel"
)

var teaserFlags struct {
	volume int
	format string
}

var teaserCmd = &cobra.Command{
	Use:   "teaser",
	Short: "Print the homepage teaser figures",
	Long: `Print the hours and dollars saved by the simplified homepage model.

The teaser uses its own flat wage and automation rate and does not depend on a
plan.

Examples:
  roicalc teaser --volume 500
  roicalc teaser --volume 2000 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		volume := cfg.Calculator.DefaultVolume
		if cmd.Flags().Changed("volume") {
			volume = teaserFlags.volume
		}
		if volume < 0 {
			return cli.NewConfigError("volume", "must not be negative")
		}

		preset, err := costmodel.TeaserPresetByName(cfg.Calculator.TeaserPreset)
		if err != nil {
			return cli.WrapConfigError("calculator.teaser_preset", "unknown teaser preset", err)
		}

		report := cli.TeaserReport{TeaserResult: costmodel.TeaserSavings(volume, preset)}
		return writeResult(cmd.OutOrStdout(), teaserFlags.format, report)
	},
}

func init() {
	rootCmd.AddCommand(teaserCmd)

	teaserCmd.Flags().IntVarP(&teaserFlags.volume, "volume", "n", 0, "monthly interactions (default calculator.default_volume)")
	teaserCmd.Flags().StringVarP(&teaserFlags.format, "format", "f", "text", "output format: text, json, csv")
}
