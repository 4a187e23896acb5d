package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "ROICALC_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Values in the file are applied over Default(), then defaults are applied to
// any zero fields and the result is validated. An empty path returns the
// validated defaults. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ROICALC_SECTION_FIELD (e.g., ROICALC_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file over the defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg, os.Getenv)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies overrides read through getenv. Values that fail
// to parse are ignored and the file value is kept.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(key string) string {
		return getenv(EnvPrefix + key)
	}

	// Server overrides
	setString(&cfg.Server.ListenAddress, env("SERVER_LISTEN_ADDRESS"))
	setDuration(&cfg.Server.ReadTimeout, env("SERVER_READ_TIMEOUT"))
	setDuration(&cfg.Server.WriteTimeout, env("SERVER_WRITE_TIMEOUT"))
	setDuration(&cfg.Server.IdleTimeout, env("SERVER_IDLE_TIMEOUT"))
	setDuration(&cfg.Server.ShutdownTimeout, env("SERVER_SHUTDOWN_TIMEOUT"))
	setInt(&cfg.Server.MaxHeaderBytes, env("SERVER_MAX_HEADER_BYTES"))
	setBool(&cfg.Server.CORS.Enabled, env("SERVER_CORS_ENABLED"))
	setList(&cfg.Server.CORS.AllowedOrigins, env("SERVER_CORS_ALLOWED_ORIGINS"))
	setBool(&cfg.Server.RateLimit.Enabled, env("SERVER_RATE_LIMIT_ENABLED"))
	if val := env("SERVER_RATE_LIMIT_REQUESTS_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Server.RateLimit.RequestsPerSecond = f
		}
	}
	setInt(&cfg.Server.RateLimit.Burst, env("SERVER_RATE_LIMIT_BURST"))
	setList(&cfg.Server.RateLimit.TrustedProxies, env("SERVER_RATE_LIMIT_TRUSTED_PROXIES"))

	// Calculator overrides
	setString(&cfg.Calculator.Preset, env("CALCULATOR_PRESET"))
	setString(&cfg.Calculator.TeaserPreset, env("CALCULATOR_TEASER_PRESET"))
	setString(&cfg.Calculator.DefaultPlan, env("CALCULATOR_DEFAULT_PLAN"))
	setInt(&cfg.Calculator.DefaultVolume, env("CALCULATOR_DEFAULT_VOLUME"))
	setDuration(&cfg.Calculator.AnimationDuration, env("CALCULATOR_ANIMATION_DURATION"))
	setDuration(&cfg.Calculator.FrameInterval, env("CALCULATOR_FRAME_INTERVAL"))

	// Catalog overrides
	setString(&cfg.Catalog.Path, env("CATALOG_PATH"))
	setBool(&cfg.Catalog.Watch, env("CATALOG_WATCH"))

	// Session overrides
	setDuration(&cfg.Sessions.IdleTimeout, env("SESSIONS_IDLE_TIMEOUT"))
	setString(&cfg.Sessions.SweepSchedule, env("SESSIONS_SWEEP_SCHEDULE"))
	setInt(&cfg.Sessions.MaxSessions, env("SESSIONS_MAX_SESSIONS"))

	// Analytics overrides
	setBool(&cfg.Analytics.Enabled, env("ANALYTICS_ENABLED"))
	setDuration(&cfg.Analytics.Debounce, env("ANALYTICS_DEBOUNCE"))
	setList(&cfg.Analytics.Sinks, env("ANALYTICS_SINKS"))

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, env("TELEMETRY_LOGGING_LEVEL"))
	setString(&cfg.Telemetry.Logging.Format, env("TELEMETRY_LOGGING_FORMAT"))
	setBool(&cfg.Telemetry.Metrics.Enabled, env("TELEMETRY_METRICS_ENABLED"))
	setString(&cfg.Telemetry.Metrics.Path, env("TELEMETRY_METRICS_PATH"))
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setInt(dst *int, val string) {
	if val == "" {
		return
	}
	if i, err := strconv.Atoi(val); err == nil {
		*dst = i
	}
}

func setBool(dst *bool, val string) {
	if val == "" {
		return
	}
	if b, err := strconv.ParseBool(val); err == nil {
		*dst = b
	}
}

func setDuration(dst *time.Duration, val string) {
	if val == "" {
		return
	}
	if d, err := time.ParseDuration(val); err == nil {
		*dst = d
	}
}

// setList splits a comma-separated value.
func setList(dst *[]string, val string) {
	if val == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
