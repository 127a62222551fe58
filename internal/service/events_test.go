// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

func setupEventService(t *testing.T) (*EventService, *time.Time) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := NewEventService(db, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestLogEvent(t *testing.T) {
	svc, _ := setupEventService(t)
	ctx := context.Background()

	require.NoError(t, svc.LogInfo(ctx, model.EventCategoryScheduler, "published scheduled post", map[string]any{"post_id": 4}))
	require.NoError(t, svc.LogEvent(ctx, model.EventLevelWarning, model.EventCategoryPost, "no metadata", nil))

	events, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	byMessage := map[string]model.Event{}
	for _, e := range events {
		byMessage[e.Message] = e
	}
	info := byMessage["published scheduled post"]
	assert.Equal(t, model.EventLevelInfo, info.Level)
	assert.Equal(t, model.EventCategoryScheduler, info.Category)
	assert.JSONEq(t, `{"post_id":4}`, info.Metadata)
	assert.Equal(t, "{}", byMessage["no metadata"].Metadata)
}

func TestListLimit(t *testing.T) {
	svc, now := setupEventService(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, svc.LogInfo(ctx, model.EventCategorySystem, "tick", nil))
		*now = now.Add(time.Second)
	}

	events, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))
}

func TestDeleteOldEvents(t *testing.T) {
	svc, now := setupEventService(t)
	ctx := context.Background()

	require.NoError(t, svc.LogInfo(ctx, model.EventCategorySystem, "old", nil))
	*now = now.Add(48 * time.Hour)
	require.NoError(t, svc.LogInfo(ctx, model.EventCategorySystem, "fresh", nil))

	n, err := svc.DeleteOldEvents(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].Message)
}
