// Package server provides the calculator HTTP server.
//
// It ties the plan catalog, calculator sessions, analytics and telemetry
// into one chi router and manages the process lifecycle: start, signal
// handling and graceful shutdown.
//
// # Routes
//
//	GET    /health                    liveness
//	GET    /ready                     catalog loaded, session capacity left
//	GET    /version                   build information
//	GET    /metrics                   Prometheus exposition, when enabled
//	GET    /calculator                HTML widget; query plan, volume
//	GET    /v1/plans                  current catalog
//	POST   /v1/estimate               {volume, plan_id, preset?}
//	POST   /v1/teaser                 {volume}
//	POST   /v1/sessions               new session, optionally {plan_id, volume}
//	GET    /v1/sessions/{id}          state and current frame
//	PUT    /v1/sessions/{id}/plan     {plan_id}
//	PUT    /v1/sessions/{id}/volume   {volume}
//	DELETE /v1/sessions/{id}          discard
//	GET    /v1/sessions/{id}/frames   WebSocket frame stream
//
// Errors use one JSON shape:
//
//	{"error": {"message": "...", "type": "invalid_request_error", "param": "plan_id", "code": "unknown_plan"}}
//
// # Usage
//
//	cfg := config.GetConfig()
//	srv, err := server.New(cfg, server.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// Start blocks until ctx is cancelled, SIGINT or SIGTERM arrives, or Stop is
// called. While running it also sweeps idle sessions on the configured cron
// schedule and, when catalog.watch is set, reloads the catalog file on
// change. A reloaded catalog reaches new sessions only.
package server
