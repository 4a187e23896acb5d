// Package plans defines pricing tiers and the immutable catalog that lists
// them.
//
// A Catalog is built once, from the built-in tiers or from a YAML or TOML
// file, and is never modified afterwards:
//
//	catalog, err := plans.LoadOrDefault(cfg.Catalog.Path)
//	if err != nil {
//		return err
//	}
//	growth, err := catalog.Lookup("growth")
//
// Plans carry a HasHumanBackup capability flag instead of relying on
// well-known plan names, so the cost model dispatches on data.
//
// A Source holds the catalog handed to new calculators. The Watcher swaps a
// freshly loaded catalog into the Source when the file changes; calculators
// that already hold a catalog keep it.
package plans
