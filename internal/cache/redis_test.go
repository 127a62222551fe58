// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisCache connects to BLOCKCMS_TEST_REDIS_URL or skips.
func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("BLOCKCMS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: BLOCKCMS_TEST_REDIS_URL not set")
	}
	opts := DefaultRedisOptions(url)
	opts.Prefix = "blockcms-test:"
	opts.DefaultTTL = time.Minute

	c, err := NewRedisCache(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, c.Clear(context.Background()))
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_ClearOnlyOwnPrefix(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.client.Set(ctx, "other:key", "x", time.Minute).Err())
	defer c.client.Del(ctx, "other:key")

	for _, k := range []string{PageKey("a"), PageKey("b"), PostKey("c")} {
		require.NoError(t, c.Set(ctx, k, []byte("1"), 0))
	}
	require.NoError(t, c.DeleteByPrefix(ctx, "page:"))
	_, err := c.Get(ctx, PostKey("c"))
	require.NoError(t, err)
	_, err = c.Get(ctx, PageKey("a"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats().Items)

	n, err := c.client.Exists(ctx, "other:key").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisCache_Close(t *testing.T) {
	c := newTestRedisCache(t)
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrCacheClosed)
}

func TestNewRedisCache_Errors(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisOptions{})
	assert.Error(t, err)

	_, err = NewRedisCache(context.Background(), DefaultRedisOptions("not-a-url"))
	assert.Error(t, err)
}
