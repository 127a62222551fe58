// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package publishing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
)

var baseTime = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newMachine() (*Machine, *testClock) {
	clock := &testClock{t: baseTime}
	return New(clock.Now), clock
}

func ptr(t time.Time) *time.Time { return &t }

func TestPublishSetsPublishedAt(t *testing.T) {
	m, _ := newMachine()
	next := m.Publish(model.Lifecycle{Status: model.StatusDraft, ScheduledAt: ptr(baseTime.Add(time.Hour))})

	assert.Equal(t, model.StatusPublished, next.Status)
	require.NotNil(t, next.PublishedAt)
	assert.True(t, next.PublishedAt.Equal(baseTime))
	assert.Nil(t, next.ScheduledAt)
}

func TestPublishKeepsExistingPublishedAt(t *testing.T) {
	m, _ := newMachine()
	earlier := baseTime.Add(-48 * time.Hour)
	next := m.Publish(model.Lifecycle{Status: model.StatusDraft, PublishedAt: &earlier})

	require.NotNil(t, next.PublishedAt)
	assert.True(t, next.PublishedAt.Equal(earlier))
}

func TestPublishTwiceIsNoOp(t *testing.T) {
	m, clock := newMachine()
	first := m.Publish(model.Lifecycle{Status: model.StatusDraft})
	clock.Advance(time.Minute)
	second := m.Publish(first)

	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.PublishedAt.Equal(*second.PublishedAt))
}

func TestUnpublish(t *testing.T) {
	m, _ := newMachine()
	at := ptr(baseTime.Add(time.Hour))
	l := model.Lifecycle{Status: model.StatusScheduled, ScheduledAt: at, PublishedAt: ptr(baseTime)}

	page := m.Unpublish(l, true)
	assert.Equal(t, model.StatusDraft, page.Status)
	assert.Nil(t, page.ScheduledAt)
	assert.NotNil(t, page.PublishedAt)

	post := m.Unpublish(l, false)
	assert.Equal(t, model.StatusDraft, post.Status)
	assert.Equal(t, at, post.ScheduledAt)
}

func TestScheduleRequiresFutureTime(t *testing.T) {
	m, _ := newMachine()
	draft := model.Lifecycle{Status: model.StatusDraft}

	_, err := m.Schedule(draft, baseTime.Add(-time.Second))
	assert.True(t, apperr.IsValidation(err), "now minus one second must be rejected")

	_, err = m.Schedule(draft, baseTime)
	assert.True(t, apperr.IsValidation(err), "now must be rejected")

	_, err = m.Schedule(draft, time.Time{})
	assert.True(t, apperr.IsValidation(err))

	next, err := m.Schedule(draft, baseTime.Add(time.Second))
	require.NoError(t, err, "now plus one second must be accepted")
	assert.Equal(t, model.StatusScheduled, next.Status)
	require.NotNil(t, next.ScheduledAt)
	assert.True(t, next.ScheduledAt.Equal(baseTime.Add(time.Second)))
}

func TestScheduleNormalizesToUTC(t *testing.T) {
	m, _ := newMachine()
	loc := time.FixedZone("UTC+3", 3*60*60)
	next, err := m.Schedule(model.Lifecycle{Status: model.StatusDraft}, baseTime.Add(time.Hour).In(loc))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, next.ScheduledAt.Location())
}

func TestArchiveAndUnarchive(t *testing.T) {
	m, _ := newMachine()
	archived := m.Archive(model.Lifecycle{Status: model.StatusPublished, PublishedAt: ptr(baseTime)})
	assert.Equal(t, model.StatusArchived, archived.Status)
	assert.NotNil(t, archived.PublishedAt)

	reopened, err := m.Unarchive(archived)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, reopened.Status)

	_, err = m.Unarchive(reopened)
	assert.True(t, apperr.IsValidation(err))
}

func TestPromote(t *testing.T) {
	m, clock := newMachine()
	l, err := m.Schedule(model.Lifecycle{Status: model.StatusDraft}, baseTime.Add(time.Minute))
	require.NoError(t, err)

	_, ok := m.Promote(l)
	assert.False(t, ok, "not due yet")

	clock.Advance(time.Minute)
	next, ok := m.Promote(l)
	require.True(t, ok)
	assert.Equal(t, model.StatusPublished, next.Status)
	assert.Nil(t, next.ScheduledAt)
	assert.True(t, next.PublishedAt.Equal(clock.Now()))

	_, ok = m.Promote(model.Lifecycle{Status: model.StatusDraft, ScheduledAt: ptr(baseTime)})
	assert.False(t, ok, "only scheduled entities are promoted")
}

func TestVisibilityFuturePublishedAt(t *testing.T) {
	m, clock := newMachine()
	l := model.Lifecycle{Status: model.StatusPublished, PublishedAt: ptr(baseTime.Add(time.Hour))}

	assert.False(t, m.IsPubliclyVisible(l))

	clock.Advance(time.Hour)
	assert.True(t, m.IsPubliclyVisible(l), "visible once publishedAt passes")
}

func TestIsVisibleAt(t *testing.T) {
	tests := []struct {
		name string
		l    model.Lifecycle
		want bool
	}{
		{"published past", model.Lifecycle{Status: model.StatusPublished, PublishedAt: ptr(baseTime.Add(-time.Second))}, true},
		{"published now", model.Lifecycle{Status: model.StatusPublished, PublishedAt: ptr(baseTime)}, true},
		{"published future", model.Lifecycle{Status: model.StatusPublished, PublishedAt: ptr(baseTime.Add(time.Second))}, false},
		{"published without time", model.Lifecycle{Status: model.StatusPublished}, false},
		{"draft with time", model.Lifecycle{Status: model.StatusDraft, PublishedAt: ptr(baseTime.Add(-time.Hour))}, false},
		{"archived", model.Lifecycle{Status: model.StatusArchived, PublishedAt: ptr(baseTime.Add(-time.Hour))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisibleAt(tt.l, baseTime); got != tt.want {
				t.Errorf("IsVisibleAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		l     model.Lifecycle
		field string
	}{
		{"draft", model.Lifecycle{Status: model.StatusDraft}, ""},
		{"published", model.Lifecycle{Status: model.StatusPublished, PublishedAt: ptr(baseTime)}, ""},
		{"published without time", model.Lifecycle{Status: model.StatusPublished}, "publishedAt"},
		{"scheduled without time", model.Lifecycle{Status: model.StatusScheduled}, "scheduledAt"},
		{"unknown status", model.Lifecycle{Status: "deleted"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.l)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestValidateWrite(t *testing.T) {
	m, _ := newMachine()
	past := ptr(baseTime.Add(-time.Minute))
	future := ptr(baseTime.Add(time.Minute))
	scheduledPast := model.Lifecycle{Status: model.StatusScheduled, ScheduledAt: past}

	// Entering scheduled requires a future time.
	assert.Error(t, m.ValidateWrite(nil, scheduledPast))
	assert.NoError(t, m.ValidateWrite(nil, model.Lifecycle{Status: model.StatusScheduled, ScheduledAt: future}))

	// An overdue scheduled row may be edited without touching its time.
	assert.NoError(t, m.ValidateWrite(&scheduledPast, scheduledPast))

	// Moving the time re-checks it.
	moved := model.Lifecycle{Status: model.StatusScheduled, ScheduledAt: ptr(baseTime.Add(-time.Second))}
	assert.Error(t, m.ValidateWrite(&scheduledPast, moved))

	assert.Error(t, m.ValidateWrite(nil, model.Lifecycle{Status: model.StatusPublished}))
}

func TestNewDefaultsClock(t *testing.T) {
	m := New(nil)
	assert.WithinDuration(t, time.Now(), m.Now(), time.Second)
}
