// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, .env, YAML file and environment (see Load).
// - External errors must be wrapped via this package's error sentinels.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Host is the interface to bind; empty binds all interfaces.
	Host string `koanf:"host"`

	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// ReplicateAPIToken authenticates calls to the hosted model API.
	// An empty token is accepted; calls then fail upstream.
	ReplicateAPIToken string `koanf:"replicate_api_token"`

	// ReplicateBaseURL overrides the hosted model API endpoint.
	ReplicateBaseURL string `koanf:"replicate_base_url"`

	// MaxBodyBytes caps accepted JSON request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Port:              3000,
		MaxBodyBytes:      100 << 10,
		MetricsEnabled:    true,
		ShutdownTimeoutMS: 30_000,
	}
}

// Addr returns the listen address built from Host and Port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
