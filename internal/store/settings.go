// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/olegiv/blockcms/internal/model"
)

type postSettingsRow struct {
	PostsPerPage     int           `db:"posts_per_page"`
	BlogTitle        string        `db:"blog_title"`
	BlogDescription  string        `db:"blog_description"`
	DefaultOGImageID sql.NullInt64 `db:"default_og_image_id"`
	RSSEnabled       bool          `db:"rss_enabled"`
	UpdatedAt        Timestamp     `db:"updated_at"`
}

// GetPostSettings returns the settings row. It returns sql.ErrNoRows before
// the first save.
func (q *Queries) GetPostSettings(ctx context.Context) (model.PostSettings, error) {
	var row postSettingsRow
	err := q.get(ctx, &row, `SELECT posts_per_page, blog_title, blog_description, default_og_image_id,
		rss_enabled, updated_at FROM post_settings WHERE id = 1`)
	if err != nil {
		return model.PostSettings{}, err
	}
	return model.PostSettings{
		PostsPerPage:     row.PostsPerPage,
		BlogTitle:        row.BlogTitle,
		BlogDescription:  row.BlogDescription,
		DefaultOGImageID: intPtr(row.DefaultOGImageID),
		RSSEnabled:       row.RSSEnabled,
		UpdatedAt:        row.UpdatedAt.Time,
	}, nil
}

// UpsertPostSettings writes the single settings row.
func (q *Queries) UpsertPostSettings(ctx context.Context, s model.PostSettings) error {
	_, err := q.namedExec(ctx, `INSERT INTO post_settings (
		id, posts_per_page, blog_title, blog_description, default_og_image_id, rss_enabled, updated_at
	) VALUES (
		1, :posts_per_page, :blog_title, :blog_description, :default_og_image_id, :rss_enabled, :updated_at
	) ON CONFLICT (id) DO UPDATE SET
		posts_per_page = excluded.posts_per_page,
		blog_title = excluded.blog_title,
		blog_description = excluded.blog_description,
		default_og_image_id = excluded.default_og_image_id,
		rss_enabled = excluded.rss_enabled,
		updated_at = excluded.updated_at`, postSettingsRow{
		PostsPerPage:     s.PostsPerPage,
		BlogTitle:        s.BlogTitle,
		BlogDescription:  s.BlogDescription,
		DefaultOGImageID: nullInt(s.DefaultOGImageID),
		RSSEnabled:       s.RSSEnabled,
		UpdatedAt:        Timestamp{s.UpdatedAt},
	})
	return err
}
