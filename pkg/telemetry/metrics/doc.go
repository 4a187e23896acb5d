// Package metrics exposes roicalc's Prometheus metrics.
//
// A Collector owns its own registry so tests and multiple servers in one
// process do not collide on the default registry. Mount Handler at the
// configured metrics path:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	r.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
