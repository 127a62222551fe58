// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Post represents a blog entry.
type Post struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Slug               string     `json:"slug"`
	Excerpt            string     `json:"excerpt"`
	ContentJSON        Document   `json:"contentJson"`
	LegacyHTML         string     `json:"legacyHtml"`
	AuthorID           *int64     `json:"authorId"`
	CoverImageID       *int64     `json:"coverImageId"`
	OGImageID          *int64     `json:"ogImageId"`
	ReadingTimeMinutes int        `json:"readingTimeMinutes"`
	CanonicalURL       string     `json:"canonicalUrl"`
	Featured           bool       `json:"featured"`
	AllowIndex         bool       `json:"allowIndex"`
	AllowFollow        bool       `json:"allowFollow"`
	CustomCSS          string     `json:"customCss"`
	Status             Status     `json:"status"`
	PublishedAt        *time.Time `json:"publishedAt"`
	ScheduledAt        *time.Time `json:"scheduledAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	Categories         []Category `json:"categories"`
	Tags               []Tag      `json:"tags"`
}

// Lifecycle returns the post's publishing state.
func (p *Post) Lifecycle() Lifecycle {
	return Lifecycle{Status: p.Status, PublishedAt: p.PublishedAt, ScheduledAt: p.ScheduledAt}
}

// SetLifecycle copies a publishing state onto the post.
func (p *Post) SetLifecycle(l Lifecycle) {
	p.Status = l.Status
	p.PublishedAt = l.PublishedAt
	p.ScheduledAt = l.ScheduledAt
}

