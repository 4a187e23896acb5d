// Package config loads and validates roicalc configuration.
//
// Configuration comes from an optional YAML file layered over Default(),
// followed by ROICALC_* environment variable overrides:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("roicalc.yaml")
//
// Validation collects every problem into a ValidationError rather than
// stopping at the first one.
//
// Example file:
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//	  cors:
//	    allowed_origins: ["https://example.com"]
//	calculator:
//	  preset: fully_loaded
//	  default_volume: 500
//	  animation_duration: 600ms
//	catalog:
//	  path: plans.toml
//	  watch: true
//	telemetry:
//	  logging:
//	    level: debug
//	    format: text
package config
