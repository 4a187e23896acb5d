package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// Config is the root configuration structure for roicalc. It covers the
// HTTP server, calculator behavior, the plan catalog, calculator sessions,
// analytics and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, CORS and rate limiting.
	Server ServerConfig `yaml:"server"`

	// Calculator contains cost presets, defaults and animation settings for
	// the interactive calculator.
	Calculator CalculatorConfig `yaml:"calculator"`

	// Catalog locates the plan catalog and controls hot reload.
	Catalog CatalogConfig `yaml:"catalog"`

	// Sessions controls the in-memory calculator sessions of the HTTP API.
	Sessions SessionsConfig `yaml:"sessions"`

	// Analytics controls the fire-and-forget calculator change events.
	Analytics AnalyticsConfig `yaml:"analytics"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. WebSocket frame streams are hijacked and not affected.
	// Default: 15s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration. The
	// marketing site embeds the calculator from another origin.
	CORS CORSConfig `yaml:"cors"`

	// RateLimit contains per-client rate limiting configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// RateLimitConfig contains per-client-IP token bucket settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is applied.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained request rate per client.
	// Default: 20
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the token bucket size.
	// Default: 40
	Burst int `yaml:"burst"`

	// StaleAfter evicts client buckets not seen for this long.
	// Default: 3m
	StaleAfter time.Duration `yaml:"stale_after"`

	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies
	// whose X-Real-IP and X-Forwarded-For headers are believed. Requests
	// from any other peer are keyed by their connection address.
	// Default: [] (headers ignored)
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// TrustedPrefixes parses TrustedProxies. A bare address is taken as a
// single-host prefix.
func (c RateLimitConfig) TrustedPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// CalculatorConfig contains calculator behavior.
type CalculatorConfig struct {
	// Preset names the cost constants of the full model.
	// Default: "fully_loaded"
	Preset string `yaml:"preset"`

	// TeaserPreset names the constants of the homepage teaser.
	// Default: "homepage_teaser"
	TeaserPreset string `yaml:"teaser_preset"`

	// DefaultPlan is the plan selected on start. Empty uses the catalog
	// default.
	DefaultPlan string `yaml:"default_plan"`

	// DefaultVolume is the volume on start and the value restored when
	// leaving the capped tier while pinned at its cap.
	// Default: 500
	DefaultVolume int `yaml:"default_volume"`

	// Slider describes the volume input control.
	Slider SliderConfig `yaml:"slider"`

	// AnimationDuration is the length of the count-up animation.
	// Default: 600ms
	AnimationDuration time.Duration `yaml:"animation_duration"`

	// FrameInterval is the tick used by frame streams and the terminal UI.
	// Default: 16ms
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// SliderConfig describes the volume slider.
type SliderConfig struct {
	// Min is the lowest selectable volume.
	// Default: 0
	Min int `yaml:"min"`

	// Max is the highest selectable volume.
	// Default: 5000
	Max int `yaml:"max"`

	// Step is the slider granularity.
	// Default: 50
	Step int `yaml:"step"`
}

// CatalogConfig locates the plan catalog.
type CatalogConfig struct {
	// Path is a YAML or TOML catalog file. Empty uses the built-in catalog.
	Path string `yaml:"path"`

	// Watch reloads the catalog when the file changes. New sessions get the
	// new catalog; running sessions keep theirs.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a changed file is re-read.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// SessionsConfig controls in-memory calculator sessions.
type SessionsConfig struct {
	// IdleTimeout discards sessions not touched for this long.
	// Default: 30m
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// SweepSchedule is a cron expression for the idle sweep.
	// Default: "@every 1m"
	SweepSchedule string `yaml:"sweep_schedule"`

	// MaxSessions bounds the number of live sessions (0 = unlimited).
	// Default: 10000
	MaxSessions int `yaml:"max_sessions"`
}

// AnalyticsConfig controls calculator change events.
type AnalyticsConfig struct {
	// Enabled controls whether events are emitted at all.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period after the last change before an event is
	// emitted, so a dragged slider yields one event.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`

	// Sinks lists event destinations: "log", "metrics".
	// Default: ["log", "metrics"]
	Sinks []string `yaml:"sinks"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json", "text" or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "roicalc"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "calculator"
	Subsystem string `yaml:"subsystem"`

	// SavingsBuckets are histogram buckets for monthly savings in USD.
	// Default: [0, 100, 500, 1000, 2500, 5000, 10000, 50000]
	SavingsBuckets []float64 `yaml:"savings_buckets"`
}
