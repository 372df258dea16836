package config

import (
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/apodwikat/abtest/internal/adapters/otel"
	"github.com/apodwikat/abtest/internal/util"
)

const prefix = "ABTEST"

// Database holds run-history database configuration. An empty URL means the
// default SQLite file in the XDG data directory.
type Database struct {
	URL       string `envconfig:"DATABASE_URL"`
	AuthToken string `envconfig:"DATABASE_AUTH_TOKEN"`
}

// Metrics holds metrics exporter configuration.
type Metrics struct {
	OTELEnabled       bool   `envconfig:"OTEL_ENABLED"`
	OTELEndpoint      string `envconfig:"OTEL_ENDPOINT"`
	OTELInsecure      bool   `envconfig:"OTEL_INSECURE"`
	PrometheusEnabled bool   `envconfig:"PROMETHEUS_ENABLED" default:"true"`
}

// Config is the full application configuration.
type Config struct {
	Dataset   string `envconfig:"DATASET" default:"data/applicants.xlsx"`
	Addr      string `envconfig:"ADDR" default:":8050"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	// Seed fixes the random assignment. Zero means a random seed.
	Seed uint64 `envconfig:"SEED"`

	Database Database `ignored:"true"`
	Metrics  Metrics  `ignored:"true"`
}

// Load loads configuration from ABTEST_ environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process(prefix, &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process(prefix, &cfg.Metrics); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		dir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Database.URL = filepath.Join(dir, "abtest.db")
	}
	return &cfg, nil
}

// OTEL converts the metrics section into exporter configuration.
func (c *Config) OTEL() otel.Config {
	return otel.Config{
		Endpoint:   c.Metrics.OTELEndpoint,
		Enabled:    c.Metrics.OTELEnabled,
		Insecure:   c.Metrics.OTELInsecure,
		Prometheus: c.Metrics.PrometheusEnabled,
	}
}
