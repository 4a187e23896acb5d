// Package telemetry groups roicalc's observability packages.
//
//   - logging: slog construction and request/session context fields
//   - metrics: Prometheus collector with a private registry
//   - health: liveness, readiness and version endpoints
package telemetry
