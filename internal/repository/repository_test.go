// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/revision"
	"github.com/olegiv/blockcms/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingInvalidator struct {
	n atomic.Int64
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.n.Add(1)
}

type fixture struct {
	db    *store.DB
	clock *fakeClock
	cache *countingInvalidator
	repos *Repositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "repository.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	logger := slog.New(slog.DiscardHandler)
	clock := &fakeClock{now: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)}
	cache := &countingInvalidator{}

	repos := NewRepositories(Deps{
		DB:        db,
		Machine:   publishing.New(clock.Now),
		Revisions: revision.NewStore(db, logger),
		Cache:     cache,
		Logger:    logger,
	})
	return &fixture{db: db, clock: clock, cache: cache, repos: repos}
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func ptr[T any](v T) *T {
	return &v
}

func TestOptionalUnmarshal(t *testing.T) {
	var p PagePatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &p))
	assert.False(t, p.PublishedAt.Set)
	assert.Nil(t, p.ContentJSON)

	p = PagePatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"publishedAt":null,"contentJson":null}`), &p))
	assert.True(t, p.PublishedAt.Set)
	assert.Nil(t, p.PublishedAt.Value)
	assert.Equal(t, "null", string(p.ContentJSON))

	p = PagePatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"scheduledAt":"2026-06-01T10:00:00Z"}`), &p))
	require.True(t, p.ScheduledAt.Set)
	require.NotNil(t, p.ScheduledAt.Value)
	assert.Equal(t, 2026, p.ScheduledAt.Value.Year())

	assert.Error(t, json.Unmarshal([]byte(`{"scheduledAt":"soon"}`), &p))

	b, err := json.Marshal(Some(int64(4)))
	require.NoError(t, err)
	assert.Equal(t, "4", string(b))
	b, err = json.Marshal(Null[int64]())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repos.Seed(ctx))
	require.NoError(t, f.repos.Seed(ctx))

	pages, err := f.repos.Pages.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	home, err := f.repos.Pages.FindHome(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultHomeSlug, home.Slug)
	assert.Equal(t, "published", string(home.Status))
	require.Len(t, home.ContentJSON.Blocks, 1)
	assert.Equal(t, "hero", home.ContentJSON.Blocks[0].Type)

	_, err = store.New(f.db).GetPostSettings(ctx)
	assert.NoError(t, err)
}
