package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Rate limit defaults
	DefaultRateLimitEnabled    = true
	DefaultRateLimitRPS        = 20.0
	DefaultRateLimitBurst      = 40
	DefaultRateLimitStaleAfter = 3 * time.Minute

	// Calculator defaults
	DefaultCalculatorPreset  = "fully_loaded"
	DefaultTeaserPreset      = "homepage_teaser"
	DefaultVolume            = 500
	DefaultSliderMin         = 0
	DefaultSliderMax         = 5000
	DefaultSliderStep        = 50
	DefaultAnimationDuration = 600 * time.Millisecond
	DefaultFrameInterval     = 16 * time.Millisecond

	// Catalog defaults
	DefaultCatalogWatchDebounce = 100 * time.Millisecond

	// Session defaults
	DefaultSessionIdleTimeout   = 30 * time.Minute
	DefaultSessionSweepSchedule = "@every 1m"
	DefaultMaxSessions          = 10000

	// Analytics defaults
	DefaultAnalyticsEnabled  = true
	DefaultAnalyticsDebounce = 200 * time.Millisecond

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "roicalc"
	DefaultMetricsSubsystem = "calculator"
)

// Default returns a configuration with every field set to its default. It is
// the starting point for LoadConfig, so values absent from a file keep their
// defaults, including booleans that default to true.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{
				Enabled: DefaultCORSEnabled,
			},
			RateLimit: RateLimitConfig{
				Enabled: DefaultRateLimitEnabled,
			},
		},
		Analytics: AnalyticsConfig{
			Enabled: DefaultAnalyticsEnabled,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyCalculatorDefaults(&cfg.Calculator)

	if cfg.Catalog.WatchDebounce == 0 {
		cfg.Catalog.WatchDebounce = DefaultCatalogWatchDebounce
	}

	// Session defaults
	if cfg.Sessions.IdleTimeout == 0 {
		cfg.Sessions.IdleTimeout = DefaultSessionIdleTimeout
	}
	if cfg.Sessions.SweepSchedule == "" {
		cfg.Sessions.SweepSchedule = DefaultSessionSweepSchedule
	}
	if cfg.Sessions.MaxSessions == 0 {
		cfg.Sessions.MaxSessions = DefaultMaxSessions
	}

	// Analytics defaults
	if cfg.Analytics.Debounce == 0 {
		cfg.Analytics.Debounce = DefaultAnalyticsDebounce
	}
	if len(cfg.Analytics.Sinks) == 0 {
		cfg.Analytics.Sinks = []string{"log", "metrics"}
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.SavingsBuckets) == 0 {
		cfg.Telemetry.Metrics.SavingsBuckets = []float64{0, 100, 500, 1000, 2500, 5000, 10000, 50000}
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	cors := &s.CORS
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}

	rl := &s.RateLimit
	if rl.RequestsPerSecond == 0 {
		rl.RequestsPerSecond = DefaultRateLimitRPS
	}
	if rl.Burst == 0 {
		rl.Burst = DefaultRateLimitBurst
	}
	if rl.StaleAfter == 0 {
		rl.StaleAfter = DefaultRateLimitStaleAfter
	}
}

func applyCalculatorDefaults(c *CalculatorConfig) {
	if c.Preset == "" {
		c.Preset = DefaultCalculatorPreset
	}
	if c.TeaserPreset == "" {
		c.TeaserPreset = DefaultTeaserPreset
	}
	if c.DefaultVolume == 0 {
		c.DefaultVolume = DefaultVolume
	}
	// Slider.Min defaults to 0, its zero value.
	if c.Slider.Max == 0 {
		c.Slider.Max = DefaultSliderMax
	}
	if c.Slider.Step == 0 {
		c.Slider.Step = DefaultSliderStep
	}
	if c.AnimationDuration == 0 {
		c.AnimationDuration = DefaultAnimationDuration
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = DefaultFrameInterval
	}
}
