// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Status is the publishing state of a Page or Post.
type Status string

// Publishing statuses
const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusDraft, StatusScheduled, StatusPublished, StatusArchived}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Lifecycle is the slice of an entity that the publishing state machine
// reads and writes.
type Lifecycle struct {
	Status      Status
	PublishedAt *time.Time
	ScheduledAt *time.Time
}
