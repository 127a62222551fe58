// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Keys for the public read path.
const (
	KeyHomePage = "page:home"
	KeyShopPage = "page:shop"
)

// PageKey returns the key of a public page looked up by slug.
func PageKey(slug string) string { return "page:slug:" + slug }

// PostKey returns the key of a public post looked up by slug.
func PostKey(slug string) string { return "post:slug:" + slug }

// ContentCache caches decoded public entities. Every content write drops
// the whole cache through Invalidate; entries never outlive one write.
type ContentCache struct {
	backend Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewContentCache wraps backend. A zero ttl uses the backend default.
func NewContentCache(backend Cache, ttl time.Duration, logger *slog.Logger) *ContentCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentCache{backend: backend, ttl: ttl, logger: logger}
}

// Invalidate clears the cache. Failures are logged; a stale entry expires
// with its TTL.
func (c *ContentCache) Invalidate(ctx context.Context) {
	if err := c.backend.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear content cache", "category", "cache", "error", err)
	}
}

// Backend returns the underlying cache.
func (c *ContentCache) Backend() Cache {
	return c.backend
}

// Load returns the cached value for key, or calls load and stores its
// result. Cache errors degrade to a direct load.
func Load[T any](ctx context.Context, c *ContentCache, key string, load func(context.Context) (T, error)) (T, error) {
	if data, err := c.backend.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.Debug("discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Debug("cache read failed", "key", key, "error", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}
