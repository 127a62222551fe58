// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes the cache backend.
type Config struct {
	// RedisURL selects Redis when non-empty.
	RedisURL string
	Prefix   string
	TTL      time.Duration
	// MaxItems bounds the memory backend.
	MaxItems int
	// FallbackToMemory keeps the process up when Redis is unreachable.
	FallbackToMemory bool
}

// Result reports which backend New produced.
type Result struct {
	Cache      Cache
	Backend    string
	IsFallback bool
}

// New builds the configured backend. With FallbackToMemory set, a Redis
// connection failure is logged and a memory cache is returned instead.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	memory := func() Cache {
		return NewMemoryCache(MemoryOptions{
			DefaultTTL:      cfg.TTL,
			MaxItems:        cfg.MaxItems,
			CleanupInterval: time.Minute,
		})
	}

	if cfg.RedisURL == "" {
		return Result{Cache: memory(), Backend: BackendMemory}, nil
	}

	opts := DefaultRedisOptions(cfg.RedisURL)
	if cfg.Prefix != "" {
		opts.Prefix = cfg.Prefix
	}
	if cfg.TTL > 0 {
		opts.DefaultTTL = cfg.TTL
	}

	rc, err := NewRedisCache(ctx, opts)
	if err != nil {
		if !cfg.FallbackToMemory {
			return Result{}, fmt.Errorf("connecting to redis at %s: %w", SanitizeRedisURL(cfg.RedisURL), err)
		}
		logger.Warn("redis unavailable, using memory cache",
			"category", "cache",
			"url", SanitizeRedisURL(cfg.RedisURL),
			"error", err)
		return Result{Cache: memory(), Backend: BackendMemory, IsFallback: true}, nil
	}

	logger.Info("using redis cache", "url", SanitizeRedisURL(cfg.RedisURL), "prefix", opts.Prefix)
	return Result{Cache: rc, Backend: BackendRedis}, nil
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
