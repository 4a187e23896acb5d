// Package logging builds the structured loggers used across roicalc.
//
// It wraps log/slog with level and format parsing so the logger can be
// configured from the telemetry section of the config file:
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//
// Components accept a *slog.Logger and fall back to slog.Default() with a
// "component" attribute. FromContext adds the request and session IDs that
// the HTTP middleware stores on the request context.
package logging
