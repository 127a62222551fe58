// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryPage      = "page"
	EventCategoryPost      = "post"
	EventCategoryTaxonomy  = "taxonomy"
	EventCategoryRevision  = "revision"
	EventCategoryScheduler = "scheduler"
	EventCategoryCache     = "cache"
	EventCategoryHTTP      = "http"
	EventCategorySystem    = "system"
)

// Event represents a persisted warning or error log entry.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}
