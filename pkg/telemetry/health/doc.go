// Package health provides liveness, readiness and version endpoints.
//
// Readiness is the aggregate of named checks registered by the server, such
// as "catalog" (a plan catalog is loaded) and "sessions" (the session store
// has room):
//
//	checker := health.New(0)
//	checker.Register("catalog", func(ctx context.Context) error { ... })
//	r.Get("/ready", checker.ReadinessHandler())
package health
