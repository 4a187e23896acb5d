/*
Package cli holds the output and error helpers shared by the roicalc
commands.

Results implement Texter for the default text output and Tabular for CSV;
JSON uses the struct tags:

	formatter := cli.NewFormatter(cli.FormatJSON)
	report := cli.NewEstimateReport(500, plan, costmodel.FullyLoaded)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Errors:

ConfigError marks bad flags, config files and catalogs; CommandError wraps a
failed subcommand. ExitCode maps either to the process exit status.
*/
package cli
