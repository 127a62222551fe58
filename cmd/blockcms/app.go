// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/config"
	"github.com/olegiv/blockcms/internal/logging"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/repository"
	"github.com/olegiv/blockcms/internal/revision"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *store.DB
	machine *publishing.Machine
	cache   *cache.ContentCache
	backend cache.Cache
	repos   *repository.Repositories
	events  *service.EventService
}

func newLogger(cfg *config.Config, h func(slog.Handler) slog.Handler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}
	var base slog.Handler
	if cfg.IsDevelopment() {
		base = slog.NewTextHandler(os.Stdout, opts)
	} else {
		base = slog.NewJSONHandler(os.Stdout, opts)
	}
	if h != nil {
		base = h(base)
	}
	return slog.New(base)
}

// openDB loads the configuration, opens the database and applies migrations.
func openDB(ctx context.Context) (*config.Config, *slog.Logger, *store.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg, nil)
	slog.SetDefault(logger)

	if cfg.DBDriver != store.DriverPostgres {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	logger.Info("initializing database", "driver", cfg.DBDriver)
	db, err := store.NewDBWithConfig(cfg.DBConfig())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	logger.Info("running database migrations")
	if err := store.MigrateContext(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database ready")
	return cfg, logger, db, nil
}

// newApp wires the full component graph. Callers must call close.
func newApp(ctx context.Context) (*app, error) {
	cfg, _, db, err := openDB(ctx)
	if err != nil {
		return nil, err
	}

	// Upgrade logger to also write WARN and ERROR logs to the event log
	logger := newLogger(cfg, func(h slog.Handler) slog.Handler {
		return logging.NewEventLogHandler(h, db)
	})
	slog.SetDefault(logger)

	res, err := cache.New(ctx, cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		TTL:              cfg.CacheTTL,
		MaxItems:         cfg.CacheMaxSize,
		FallbackToMemory: true,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing cache: %w", err)
	}
	logger.Info("cache initialized", "backend", res.Backend, "fallback", res.IsFallback)

	machine := publishing.New(nil)
	contentCache := cache.NewContentCache(res.Cache, cfg.CacheTTL, logger)
	repos := repository.NewRepositories(repository.Deps{
		DB:        db,
		Machine:   machine,
		Revisions: revision.NewStore(db, logger),
		Cache:     contentCache,
		Logger:    logger,
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		machine: machine,
		cache:   contentCache,
		backend: res.Cache,
		repos:   repos,
		events:  service.NewEventService(db, logger),
	}, nil
}

func (a *app) close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing cache", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database connection", "error", err)
	}
}
