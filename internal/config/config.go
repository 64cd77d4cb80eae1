package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the chat service.
// Environment variables are automatically parsed from KIDSPARK_ prefix
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// SQLite Configuration (local target)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"kidspark.db"`

	// Postgres Configuration (cloud targets)
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Activity catalog: store serves candidates from the database,
	// remote proxies an external catalog API. "auto" derives from CatalogURL.
	CatalogProvider string `envconfig:"CATALOG_PROVIDER" default:"auto"`
	CatalogURL      string `envconfig:"CATALOG_URL" default:""`

	// Candidate cache TTL in seconds; 0 disables caching.
	CatalogCacheTTLSeconds int `envconfig:"CATALOG_CACHE_TTL_SECONDS" default:"300"`

	// Health monitor cadence
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and
// CatalogProvider when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}

	if c.CatalogProvider == "" || c.CatalogProvider == "auto" {
		if c.CatalogURL != "" {
			c.CatalogProvider = "remote"
		} else {
			c.CatalogProvider = "store"
		}
	}
	switch c.CatalogProvider {
	case "store":
	case "remote":
		if c.CatalogURL == "" {
			return fmt.Errorf("CATALOG_URL is required when CATALOG_PROVIDER=remote")
		}
	default:
		return fmt.Errorf("unsupported CATALOG_PROVIDER: %s", c.CatalogProvider)
	}

	if c.CatalogCacheTTLSeconds < 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL_SECONDS must not be negative")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with KIDSPARK_
// Example: KIDSPARK_BUILD_TARGET, KIDSPARK_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("KIDSPARK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("catalog_provider", cfg.CatalogProvider).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:            EnvTesting,
		BuildTarget:            "local",
		DBDriver:               "auto",
		HTTPPort:               8080,
		SQLitePath:             ":memory:",
		CatalogProvider:        "auto",
		CatalogCacheTTLSeconds: 0,
	}
	if err := cfg.ResolveDefaults(); err != nil {
		panic(err)
	}
	return cfg
}
