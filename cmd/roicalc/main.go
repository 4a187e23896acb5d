// roicalc estimates what a customer-support team saves by moving
// interactions onto a subscription plan.
//
// It serves the interactive calculator over HTTP, runs it in the terminal,
// and answers one-off estimates from the command line.
//
// Usage:
//
//	# Serve the calculator API and widget
//	roicalc serve --config config.yaml
//
//	# Estimate savings for one plan and volume
//	roicalc estimate --plan growth --volume 500
//
//	# Homepage teaser figures
//	roicalc teaser --volume 500
//
//	# List the plan catalog
//	roicalc plans --format csv
//
//	# Interactive calculator in the terminal
//	roicalc tui
//
//	# Check a config file and plan catalog
//	roicalc validate --config config.yaml --catalog plans.toml
package main

func main() {
	Execute()
}
