package main

import (
	"github.com/spf13/cobra"

	"deflect-hq/roicalc/pkg/cli"
)

var plansFormat string

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plan catalog",
	Long: `List the plans of the configured catalog with their pricing and caps.

Examples:
  roicalc plans
  roicalc plans --catalog plans.toml --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), plansFormat, cli.NewPlansReport(catalog))
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)

	plansCmd.Flags().StringVarP(&plansFormat, "format", "f", "text", "output format: text, json, csv")
}
