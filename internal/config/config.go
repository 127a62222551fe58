// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/blockcms/internal/store"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"BLOCKCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"BLOCKCMS_LOG_LEVEL" envDefault:"info"`
	ServerHost string `env:"BLOCKCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BLOCKCMS_SERVER_PORT" envDefault:"8080"`

	// Database
	DBDriver          string        `env:"BLOCKCMS_DB_DRIVER" envDefault:"sqlite"`
	DBPath            string        `env:"BLOCKCMS_DB_PATH" envDefault:"./data/blockcms.db"`
	DatabaseURL       string        `env:"BLOCKCMS_DATABASE_URL"`
	DBMaxOpenConns    int           `env:"BLOCKCMS_DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"BLOCKCMS_DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"BLOCKCMS_DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Scheduled publishing
	SweepEnabled   bool          `env:"BLOCKCMS_SWEEP_ENABLED" envDefault:"true"`
	SweepSchedule  string        `env:"BLOCKCMS_SWEEP_SCHEDULE" envDefault:"* * * * *"`
	EventRetention time.Duration `env:"BLOCKCMS_EVENT_RETENTION" envDefault:"720h"`

	// Cache
	RedisURL     string        `env:"BLOCKCMS_REDIS_URL"`
	CachePrefix  string        `env:"BLOCKCMS_CACHE_PREFIX" envDefault:"blockcms:"`
	CacheTTL     time.Duration `env:"BLOCKCMS_CACHE_TTL" envDefault:"5m"`
	CacheMaxSize int           `env:"BLOCKCMS_CACHE_MAX_SIZE" envDefault:"10000"`

	// HTTP
	RateLimitRPS    float64       `env:"BLOCKCMS_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst  int           `env:"BLOCKCMS_RATE_LIMIT_BURST" envDefault:"20"`
	RequestTimeout  time.Duration `env:"BLOCKCMS_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"BLOCKCMS_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// DBConfig converts the database settings for store.NewDBWithConfig.
func (c Config) DBConfig() store.DBConfig {
	cfg := store.DefaultDBConfig(c.DBPath)
	cfg.Driver = c.DBDriver
	cfg.DSN = c.DatabaseURL
	cfg.MaxOpenConns = c.DBMaxOpenConns
	cfg.MaxIdleConns = c.DBMaxIdleConns
	cfg.ConnMaxLifetime = c.DBConnMaxLifetime
	return cfg
}

// Load parses environment variables and validates the result.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom is Load over an explicit environment instead of the process one.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Env {
	case "development", "production", "test":
	default:
		errs = append(errs, fmt.Errorf("BLOCKCMS_ENV must be development, production or test, got %q", c.Env))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("BLOCKCMS_LOG_LEVEL %q is not a known level", c.LogLevel))
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("BLOCKCMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}

	switch c.DBDriver {
	case store.DriverSQLite, store.DriverSQLiteCGO:
		if c.DBPath == "" {
			errs = append(errs, errors.New("BLOCKCMS_DB_PATH is required for sqlite"))
		}
	case store.DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("BLOCKCMS_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("BLOCKCMS_DB_DRIVER must be sqlite, sqlite3 or postgres, got %q", c.DBDriver))
	}

	if c.SweepEnabled {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			errs = append(errs, fmt.Errorf("BLOCKCMS_SWEEP_SCHEDULE %q: %w", c.SweepSchedule, err))
		}
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("BLOCKCMS_RATE_LIMIT_RPS and BLOCKCMS_RATE_LIMIT_BURST must be positive"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("BLOCKCMS_CACHE_TTL must be positive"))
	}

	return errors.Join(errs...)
}
