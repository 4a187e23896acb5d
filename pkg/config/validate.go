package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"deflect-hq/roicalc/pkg/costmodel"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCalculator(&cfg.Calculator)...)
	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateSessions(&cfg.Sessions)...)
	errs = append(errs, validateAnalytics(&cfg.Analytics)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	} else if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address format %q (expected host:port)", s.ListenAddress),
		})
	}

	if s.ReadTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must be positive"})
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must be positive"})
	}
	if s.IdleTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "must be positive"})
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must be positive"})
	}
	if s.MaxHeaderBytes <= 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "must be positive"})
	}

	if s.CORS.Enabled {
		if s.CORS.MaxAge < 0 {
			errs = append(errs, FieldError{Field: "server.cors.max_age", Message: "must not be negative"})
		}
		for _, origin := range s.CORS.AllowedOrigins {
			if origin == "*" && s.CORS.AllowCredentials {
				errs = append(errs, FieldError{
					Field:   "server.cors.allow_credentials",
					Message: "credentials cannot be allowed with wildcard origin",
				})
				break
			}
		}
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, FieldError{Field: "server.rate_limit.requests_per_second", Message: "must be positive"})
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, FieldError{Field: "server.rate_limit.burst", Message: "must be at least 1"})
		}
		if s.RateLimit.StaleAfter <= 0 {
			errs = append(errs, FieldError{Field: "server.rate_limit.stale_after", Message: "must be positive"})
		}
		if _, err := s.RateLimit.TrustedPrefixes(); err != nil {
			errs = append(errs, FieldError{Field: "server.rate_limit.trusted_proxies", Message: err.Error()})
		}
	}

	return errs
}

func validateCalculator(c *CalculatorConfig) []FieldError {
	var errs []FieldError

	if _, err := costmodel.PresetByName(c.Preset); err != nil {
		errs = append(errs, FieldError{
			Field:   "calculator.preset",
			Message: fmt.Sprintf("unknown preset %q (valid: %s)", c.Preset, strings.Join(costmodel.PresetNames(), ", ")),
		})
	}
	if _, err := costmodel.TeaserPresetByName(c.TeaserPreset); err != nil {
		errs = append(errs, FieldError{
			Field:   "calculator.teaser_preset",
			Message: fmt.Sprintf("unknown teaser preset %q", c.TeaserPreset),
		})
	}

	sl := c.Slider
	if sl.Min < 0 {
		errs = append(errs, FieldError{Field: "calculator.slider.min", Message: "must not be negative"})
	}
	if sl.Max <= sl.Min {
		errs = append(errs, FieldError{
			Field:   "calculator.slider.max",
			Message: fmt.Sprintf("must be greater than slider.min (%d)", sl.Min),
		})
	}
	if sl.Step <= 0 {
		errs = append(errs, FieldError{Field: "calculator.slider.step", Message: "must be positive"})
	}

	if c.DefaultVolume < sl.Min || c.DefaultVolume > sl.Max {
		errs = append(errs, FieldError{
			Field:   "calculator.default_volume",
			Message: fmt.Sprintf("must be within slider range [%d, %d]", sl.Min, sl.Max),
		})
	}

	if c.AnimationDuration < 0 {
		errs = append(errs, FieldError{Field: "calculator.animation_duration", Message: "must not be negative"})
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, FieldError{Field: "calculator.frame_interval", Message: "must be positive"})
	}

	return errs
}

func validateCatalog(c *CatalogConfig) []FieldError {
	var errs []FieldError

	if c.Watch && c.Path == "" {
		errs = append(errs, FieldError{Field: "catalog.watch", Message: "watch requires catalog.path"})
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, FieldError{Field: "catalog.watch_debounce", Message: "must not be negative"})
	}

	return errs
}

func validateSessions(s *SessionsConfig) []FieldError {
	var errs []FieldError

	if s.IdleTimeout <= 0 {
		errs = append(errs, FieldError{Field: "sessions.idle_timeout", Message: "must be positive"})
	}
	if _, err := cron.ParseStandard(s.SweepSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "sessions.sweep_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", s.SweepSchedule, err),
		})
	}
	if s.MaxSessions < 0 {
		errs = append(errs, FieldError{Field: "sessions.max_sessions", Message: "must not be negative"})
	}

	return errs
}

var validSinks = map[string]bool{
	"log":     true,
	"metrics": true,
}

func validateAnalytics(a *AnalyticsConfig) []FieldError {
	var errs []FieldError

	if a.Debounce < 0 {
		errs = append(errs, FieldError{Field: "analytics.debounce", Message: "must not be negative"})
	}
	for i, sink := range a.Sinks {
		if !validSinks[sink] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("analytics.sinks[%d]", i),
				Message: fmt.Sprintf("unknown sink %q (valid: log, metrics)", sink),
			})
		}
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(t.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", t.Logging.Level),
		})
	}

	switch strings.ToLower(t.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (valid: json, text, console)", t.Logging.Format),
		})
	}

	if t.Metrics.Enabled {
		if !strings.HasPrefix(t.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
		}
		for i := 1; i < len(t.Metrics.SavingsBuckets); i++ {
			if t.Metrics.SavingsBuckets[i] <= t.Metrics.SavingsBuckets[i-1] {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.savings_buckets",
					Message: "buckets must be strictly increasing",
				})
				break
			}
		}
	}

	return errs
}
