// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package publishing implements the draft/scheduled/published/archived
// lifecycle shared by pages and posts.
//
// Transitions are pure: they take a model.Lifecycle and return the next
// one. Persisting the result and any side effects belong to the caller.
package publishing

import (
	"fmt"
	"time"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
)

// Clock returns the current time.
type Clock func() time.Time

// Machine applies lifecycle transitions against a clock.
type Machine struct {
	now Clock
}

// New creates a Machine. A nil clock uses time.Now.
func New(clock Clock) *Machine {
	if clock == nil {
		clock = time.Now
	}
	return &Machine{now: clock}
}

// Now returns the machine's current time in UTC.
func (m *Machine) Now() time.Time {
	return m.now().UTC()
}

// Publish moves l to published. An existing publishedAt is kept, otherwise
// it becomes now. Publishing an already published entity changes nothing.
func (m *Machine) Publish(l model.Lifecycle) model.Lifecycle {
	next := model.Lifecycle{Status: model.StatusPublished, PublishedAt: l.PublishedAt}
	if next.PublishedAt == nil {
		now := m.Now()
		next.PublishedAt = &now
	}
	return next
}

// Unpublish moves l back to draft. clearSchedule drops scheduledAt as well,
// which pages do and posts do not.
func (m *Machine) Unpublish(l model.Lifecycle, clearSchedule bool) model.Lifecycle {
	l.Status = model.StatusDraft
	if clearSchedule {
		l.ScheduledAt = nil
	}
	return l
}

// Schedule moves l to scheduled for at, which must be strictly after now.
func (m *Machine) Schedule(l model.Lifecycle, at time.Time) (model.Lifecycle, error) {
	if at.IsZero() {
		return l, apperr.Invalid("scheduledAt", "scheduledAt is required")
	}
	if !at.After(m.Now()) {
		return l, apperr.Invalid("scheduledAt", "scheduledAt must be in the future")
	}
	at = at.UTC()
	l.Status = model.StatusScheduled
	l.ScheduledAt = &at
	return l, nil
}

// Archive moves l to archived.
func (m *Machine) Archive(l model.Lifecycle) model.Lifecycle {
	l.Status = model.StatusArchived
	return l
}

// Unarchive reopens an archived entity as a draft.
func (m *Machine) Unarchive(l model.Lifecycle) (model.Lifecycle, error) {
	if l.Status != model.StatusArchived {
		return l, apperr.Invalid("status", fmt.Sprintf("cannot unarchive a %s entity", l.Status))
	}
	l.Status = model.StatusDraft
	return l, nil
}

// Promote performs the time-driven scheduled to published transition. It
// reports false when l is not due, leaving it unchanged.
func (m *Machine) Promote(l model.Lifecycle) (model.Lifecycle, bool) {
	if !m.IsDue(l) {
		return l, false
	}
	return m.Publish(l), true
}

// IsDue reports whether a scheduled entity has reached its scheduled time.
func (m *Machine) IsDue(l model.Lifecycle) bool {
	return l.Status == model.StatusScheduled &&
		l.ScheduledAt != nil &&
		!l.ScheduledAt.After(m.Now())
}

// IsPubliclyVisible reports whether the public read path may serve l.
func (m *Machine) IsPubliclyVisible(l model.Lifecycle) bool {
	return IsVisibleAt(l, m.Now())
}

// IsVisibleAt is the visibility predicate: published with a publish time at
// or before now.
func IsVisibleAt(l model.Lifecycle, now time.Time) bool {
	return l.Status == model.StatusPublished &&
		l.PublishedAt != nil &&
		!l.PublishedAt.After(now)
}

// Validate enforces the invariants that hold for every stored entity.
func Validate(l model.Lifecycle) error {
	if !l.Status.IsValid() {
		return apperr.Invalid("status", fmt.Sprintf("unknown status %q", l.Status))
	}
	if l.Status == model.StatusPublished && l.PublishedAt == nil {
		return apperr.Invalid("publishedAt", "publishedAt is required when status is published")
	}
	if l.Status == model.StatusScheduled && l.ScheduledAt == nil {
		return apperr.Invalid("scheduledAt", "scheduledAt is required when status is scheduled")
	}
	return nil
}

// ValidateWrite checks a lifecycle produced by a create or update. When the
// write enters scheduled or moves the scheduled time, that time must be in
// the future.
func (m *Machine) ValidateWrite(prev *model.Lifecycle, next model.Lifecycle) error {
	if err := Validate(next); err != nil {
		return err
	}
	if next.Status != model.StatusScheduled {
		return nil
	}
	entering := prev == nil || prev.Status != model.StatusScheduled
	moved := prev != nil && !sameTime(prev.ScheduledAt, next.ScheduledAt)
	if (entering || moved) && !next.ScheduledAt.After(m.Now()) {
		return apperr.Invalid("scheduledAt", "scheduledAt must be in the future")
	}
	return nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
