package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roicalc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}

	if cfg.Calculator.DefaultVolume != 500 {
		t.Errorf("DefaultVolume = %d, want 500", cfg.Calculator.DefaultVolume)
	}
	if cfg.Calculator.Slider != (SliderConfig{Min: 0, Max: 5000, Step: 50}) {
		t.Errorf("Slider = %+v", cfg.Calculator.Slider)
	}
	if cfg.Calculator.AnimationDuration != 600*time.Millisecond {
		t.Errorf("AnimationDuration = %v, want 600ms", cfg.Calculator.AnimationDuration)
	}
	if cfg.Analytics.Debounce != 200*time.Millisecond {
		t.Errorf("Analytics.Debounce = %v, want 200ms", cfg.Analytics.Debounce)
	}
	if !cfg.Server.CORS.Enabled || !cfg.Server.RateLimit.Enabled || !cfg.Analytics.Enabled || !cfg.Telemetry.Metrics.Enabled {
		t.Error("boolean defaults not applied")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Default()
	before := *cfg
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != before.Server.ListenAddress ||
		cfg.Calculator.Preset != before.Calculator.Preset ||
		len(cfg.Analytics.Sinks) != len(before.Analytics.Sinks) {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "60s"
  cors:
    allowed_origins: ["https://example.com"]
calculator:
  default_plan: scale
  default_volume: 1000
  animation_duration: 1s
analytics:
  enabled: false
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("ReadTimeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if got := cfg.Server.CORS.AllowedOrigins; len(got) != 1 || got[0] != "https://example.com" {
		t.Errorf("AllowedOrigins = %v", got)
	}
	if cfg.Calculator.DefaultPlan != "scale" || cfg.Calculator.DefaultVolume != 1000 {
		t.Errorf("Calculator = %+v", cfg.Calculator)
	}
	if cfg.Calculator.AnimationDuration != time.Second {
		t.Errorf("AnimationDuration = %v, want 1s", cfg.Calculator.AnimationDuration)
	}
	if cfg.Analytics.Enabled {
		t.Error("Analytics.Enabled = true, want false from file")
	}

	// Untouched sections keep defaults.
	if !cfg.Server.CORS.Enabled {
		t.Error("CORS.Enabled lost its default")
	}
	if cfg.Sessions.SweepSchedule != DefaultSessionSweepSchedule {
		t.Errorf("SweepSchedule = %q", cfg.Sessions.SweepSchedule)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "server: [",
			wantErr: "failed to parse",
		},
		{
			name:    "unknown key",
			content: "serverz:\n  listen_address: x\n",
			wantErr: "failed to parse",
		},
		{
			name:    "invalid values",
			content: "calculator:\n  preset: cheap\n",
			wantErr: "calculator.preset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig(empty) error = %v", err)
	}
	if cfg.Calculator.DefaultVolume != DefaultVolume {
		t.Errorf("DefaultVolume = %d", cfg.Calculator.DefaultVolume)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"ROICALC_SERVER_LISTEN_ADDRESS":         ":7000",
		"ROICALC_SERVER_READ_TIMEOUT":           "5s",
		"ROICALC_SERVER_RATE_LIMIT_ENABLED":     "false",
		"ROICALC_SERVER_CORS_ALLOWED_ORIGINS":   "https://a.example, https://b.example",
		"ROICALC_CALCULATOR_DEFAULT_VOLUME":     "1500",
		"ROICALC_CALCULATOR_ANIMATION_DURATION": "not-a-duration",
		"ROICALC_ANALYTICS_SINKS":               "log",
		"ROICALC_TELEMETRY_LOGGING_LEVEL":       "debug",
	}

	cfg := Default()
	applyEnvOverrides(cfg, func(k string) string { return env[k] })

	if cfg.Server.ListenAddress != ":7000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true")
	}
	if got := cfg.Server.CORS.AllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", got)
	}
	if cfg.Calculator.DefaultVolume != 1500 {
		t.Errorf("DefaultVolume = %d", cfg.Calculator.DefaultVolume)
	}
	if cfg.Calculator.AnimationDuration != DefaultAnimationDuration {
		t.Errorf("unparseable override changed AnimationDuration to %v", cfg.Calculator.AnimationDuration)
	}
	if len(cfg.Analytics.Sinks) != 1 || cfg.Analytics.Sinks[0] != "log" {
		t.Errorf("Sinks = %v", cfg.Analytics.Sinks)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "calculator:\n  default_volume: 1000\n")
	t.Setenv("ROICALC_CALCULATOR_DEFAULT_VOLUME", "2000")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Calculator.DefaultVolume != 2000 {
		t.Errorf("DefaultVolume = %d, want env value 2000", cfg.Calculator.DefaultVolume)
	}

	t.Setenv("ROICALC_CALCULATOR_DEFAULT_VOLUME", "999999")
	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("expected validation error after out-of-range override")
	}
}

func TestRateLimitConfig_TrustedPrefixes(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		want    []string
		wantErr bool
	}{
		{"none", nil, []string{}, false},
		{"cidr is masked", []string{"10.1.2.3/8"}, []string{"10.0.0.0/8"}, false},
		{"bare v4 address", []string{"192.0.2.10"}, []string{"192.0.2.10/32"}, false},
		{"bare v6 address", []string{" ::1 "}, []string{"::1/128"}, false},
		{"hostname", []string{"proxy.internal"}, nil, true},
		{"bad mask", []string{"10.0.0.0/40"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RateLimitConfig{TrustedProxies: tt.proxies}.TrustedPrefixes()
			if (err != nil) != tt.wantErr {
				t.Fatalf("TrustedPrefixes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("TrustedPrefixes() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("prefix %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides_TrustedProxies(t *testing.T) {
	path := writeConfig(t, "server:\n  rate_limit:\n    trusted_proxies: [\"10.0.0.1\"]\n")
	t.Setenv("ROICALC_SERVER_RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatal(err)
	}
	got := cfg.Server.RateLimit.TrustedProxies
	if len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "192.0.2.1" {
		t.Errorf("TrustedProxies = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "nope" }, "server.listen_address"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"wildcard with credentials", func(c *Config) { c.Server.CORS.AllowCredentials = true }, "server.cors.allow_credentials"},
		{"zero burst", func(c *Config) { c.Server.RateLimit.Burst = -1 }, "server.rate_limit.burst"},
		{"bad trusted proxy", func(c *Config) { c.Server.RateLimit.TrustedProxies = []string{"10.0.0.0/33"} }, "server.rate_limit.trusted_proxies"},
		{"unknown preset", func(c *Config) { c.Calculator.Preset = "x" }, "calculator.preset"},
		{"unknown teaser preset", func(c *Config) { c.Calculator.TeaserPreset = "x" }, "calculator.teaser_preset"},
		{"inverted slider", func(c *Config) { c.Calculator.Slider.Max = -5 }, "calculator.slider.max"},
		{"zero step", func(c *Config) { c.Calculator.Slider.Step = -1 }, "calculator.slider.step"},
		{"default volume out of range", func(c *Config) { c.Calculator.DefaultVolume = 6000 }, "calculator.default_volume"},
		{"watch without path", func(c *Config) { c.Catalog.Watch = true }, "catalog.watch"},
		{"bad cron", func(c *Config) { c.Sessions.SweepSchedule = "every minute" }, "sessions.sweep_schedule"},
		{"unknown sink", func(c *Config) { c.Analytics.Sinks = []string{"kafka"} }, "analytics.sinks[0]"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "loud" }, "telemetry.logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"unsorted buckets", func(c *Config) { c.Telemetry.Metrics.SavingsBuckets = []float64{10, 5} }, "telemetry.metrics.savings_buckets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := one.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", got)
	}

	two := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := two.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("Error() = %q", got)
	}
}

func TestInitialize(t *testing.T) {
	first := writeConfig(t, "calculator:\n  default_volume: 1500\n")
	if err := Initialize(first); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	cfg := GetConfig()
	if cfg == nil || cfg.Calculator.DefaultVolume != 1500 {
		t.Fatalf("GetConfig() = %+v, want loaded file", cfg)
	}

	second := writeConfig(t, "calculator:\n  default_volume: 2500\n")
	if err := Initialize(second); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if GetConfig() != cfg {
		t.Error("second Initialize() replaced the config")
	}
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "config.example.yaml"))
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.Calculator.DefaultPlan != "growth" || !cfg.Catalog.Watch {
		t.Errorf("example config = %+v", cfg.Calculator)
	}
	if got := cfg.Server.CORS.AllowedOrigins; len(got) != 1 || got[0] != "https://www.example.com" {
		t.Errorf("AllowedOrigins = %v", got)
	}
}
