// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Page represents a freestanding site document.
type Page struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	ContentJSON     Document   `json:"contentJson"`
	Content         string     `json:"content"`
	IsHome          bool       `json:"isHome"`
	IsShop          bool       `json:"isShop"`
	Status          Status     `json:"status"`
	PublishedAt     *time.Time `json:"publishedAt"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	NavOrder        int        `json:"navOrder"`
	MetaTitle       string     `json:"metaTitle"`
	MetaDescription string     `json:"metaDescription"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Lifecycle returns the page's publishing state.
func (p *Page) Lifecycle() Lifecycle {
	return Lifecycle{Status: p.Status, PublishedAt: p.PublishedAt, ScheduledAt: p.ScheduledAt}
}

// SetLifecycle copies a publishing state onto the page.
func (p *Page) SetLifecycle(l Lifecycle) {
	p.Status = l.Status
	p.PublishedAt = l.PublishedAt
	p.ScheduledAt = l.ScheduledAt
}
