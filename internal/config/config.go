// Package config defines service configuration and its layered loader.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PredictorURL is the base URL of the remote prediction service.
	PredictorURL string `koanf:"predictor_url"`

	// CatalogPath points to a local venue catalog JSON file. When empty the
	// catalog is fetched from PredictorURL.
	CatalogPath string `koanf:"catalog_path"`

	// GatewayTimeoutMS bounds a single call to the prediction service. Zero
	// leaves the transport without a client-side timeout.
	GatewayTimeoutMS int `koanf:"gateway_timeout_ms"`

	// PayloadRoundRunRate rounds current_run_rate to two decimals before it
	// is sent, matching what the form displays.
	PayloadRoundRunRate bool `koanf:"payload_round_run_rate"`

	// MaxSessions caps the number of live sessions held by the service.
	MaxSessions int `koanf:"max_sessions"`

	// ResetOnSuccess clears a session's inputs after a prediction returns.
	ResetOnSuccess bool `koanf:"reset_on_success"`

	// Metrics settings feed pkg/metrics.Configure.
	MetricsEnabled           bool              `koanf:"metrics_enabled"`
	MetricsNamespace         string            `koanf:"metrics_namespace"`
	MetricsSubsystem         string            `koanf:"metrics_subsystem"`
	MetricsPrefix            string            `koanf:"metrics_prefix"`
	MetricsRefreshIntervalMS int               `koanf:"metrics_refresh_interval_ms"`
	MetricsHistogramBuckets  []float64         `koanf:"metrics_histogram_buckets"`
	MetricsLabels            map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		PredictorURL:        "http://127.0.0.1:5000",
		GatewayTimeoutMS:    10_000,
		PayloadRoundRunRate: true,
		MaxSessions:         1000,

		MetricsEnabled:           true,
		MetricsNamespace:         "cricscore",
		MetricsSubsystem:         "predictor",
		MetricsRefreshIntervalMS: 10_000,
	}
}

// GatewayTimeout returns GatewayTimeoutMS as a duration.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutMS) * time.Millisecond
}

// MetricsRefreshInterval returns MetricsRefreshIntervalMS as a duration.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalMS) * time.Millisecond
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.PredictorURL) == "" && strings.TrimSpace(c.CatalogPath) == "":
		return fmt.Errorf("%w: predictor_url must not be empty", ErrInvalidConfig)
	case c.GatewayTimeoutMS < 0:
		return fmt.Errorf("%w: gateway_timeout_ms must not be negative", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.MetricsRefreshIntervalMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval_ms must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.MetricsNamespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	return nil
}
