// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. Both the API server
and the komikctl CLI load the same [Config].

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported record-store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// # Configuration Schema

// Config holds all runtime configuration for Komikflow.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// WriteTimeout bounds a whole ingest request; catalog runs fetch several
	// pages at the per-host spacing, so this is far above a normal API timeout.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10m"`

	// Record store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Optional page-list mirror (Redis). Empty disables it.
	RedisURL string `env:"REDIS_URL"`

	// Scraping behaviour
	FetchMinDelay   time.Duration `env:"FETCH_MIN_DELAY"   envDefault:"2s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT"     envDefault:"30s"`
	PageCacheTTL    time.Duration `env:"PAGE_CACHE_TTL"    envDefault:"24h"`
	CatalogMaxPages int           `env:"CATALOG_MAX_PAGES" envDefault:"5"`

	// Tracing. An empty endpoint keeps the no-op tracer provider.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"komikflow"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith is [Load] with overrides taking precedence over the process
// environment. komikctl feeds its flags through it.
func LoadWith(overrides map[string]string) (*Config, error) {
	cfg := &Config{}

	environment := env.ToMap(os.Environ())
	for key, value := range overrides {
		environment[key] = value
	}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.StoreDriver != DriverPostgres && cfg.StoreDriver != DriverSQLite {
		return nil, fmt.Errorf("config: unsupported STORE_DRIVER %q (want %s or %s)", cfg.StoreDriver, DriverPostgres, DriverSQLite)
	}

	if cfg.CatalogMaxPages < 1 {
		return nil, fmt.Errorf("config: CATALOG_MAX_PAGES must be at least 1, got %d", cfg.CatalogMaxPages)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Origins returns the configured CORS allow-list.
func (c *Config) Origins() []string {
	return c.AllowedOrigins
}
