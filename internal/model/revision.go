// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Revision is an immutable snapshot of a post taken on publish.
type Revision struct {
	ID              int64            `json:"id"`
	PostID          int64            `json:"postId"`
	Snapshot        RevisionSnapshot `json:"snapshot"`
	CreatedByUserID *int64           `json:"createdByUserId"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// RevisionSnapshot holds the post fields captured by a revision.
type RevisionSnapshot struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	ContentJSON Document   `json:"contentJson"`
	LegacyHTML  string     `json:"legacyHtml"`
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	Featured    bool       `json:"featured"`
	AllowIndex  bool       `json:"allowIndex"`
	AllowFollow bool       `json:"allowFollow"`
}

// SnapshotOf captures the revisioned fields of p.
func SnapshotOf(p Post) RevisionSnapshot {
	return RevisionSnapshot{
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		ContentJSON: p.ContentJSON,
		LegacyHTML:  p.LegacyHTML,
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
		Featured:    p.Featured,
		AllowIndex:  p.AllowIndex,
		AllowFollow: p.AllowFollow,
	}
}
