// Package costmodel converts a monthly interaction volume into the cost and
// savings figures shown by the ROI calculator.
//
// Two models are provided:
//
//   - Compute returns the full breakdown for a plan: baseline human cost,
//     plan subscription cost, residual agent cost, total and savings. Plans
//     with HasHumanBackup carry no residual agent cost; AI-only plans pay for
//     agents on the share of volume that is not deflected.
//   - TeaserSavings returns the homepage figures (hours and dollars saved)
//     from a flat automation rate and flat wage.
//
// Both are pure functions of their arguments. The constants live in named
// presets (FullyLoaded, HomepageTeaser) rather than in the functions, since
// the two surfaces use deliberately different assumptions.
//
// Example:
//
//	growth, _ := plans.DefaultCatalog().Lookup("growth")
//	b := costmodel.Compute(500, growth, costmodel.FullyLoaded)
//	// b.PlanCost == 25, b.TotalCost ≈ 587.20, b.Savings ≈ 1286.80
package costmodel
