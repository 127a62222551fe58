// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"

	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/slug"
	"github.com/olegiv/blockcms/internal/store"
)

// Revisions returns the revisions of post id in creation order.
func (r *PostRepository) Revisions(ctx context.Context, id int64) ([]model.Revision, error) {
	q := store.New(r.db)
	if _, err := q.GetPost(ctx, id); err != nil {
		return nil, notFound(err, "post", id)
	}
	return q.ListRevisions(ctx, id)
}

// RestoreRevision copies the content fields of a revision back onto the
// post. The post's lifecycle is left as it is.
func (r *PostRepository) RestoreRevision(ctx context.Context, id, revisionID int64) (model.Post, error) {
	var post model.Post
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetPost(ctx, id)
		if err != nil {
			return notFound(err, "post", id)
		}
		rev, err := q.GetRevision(ctx, id, revisionID)
		if err != nil {
			return notFound(err, "revision", revisionID)
		}

		snap := rev.Snapshot
		if err := slug.NewResolver(q).AssertAvailableFor(ctx, slug.ClassPost, snap.Slug, cur.Slug); err != nil {
			return err
		}
		cur.Title = snap.Title
		cur.Slug = snap.Slug
		cur.Excerpt = snap.Excerpt
		cur.ContentJSON = snap.ContentJSON
		cur.LegacyHTML = snap.LegacyHTML
		cur.Featured = snap.Featured
		cur.AllowIndex = snap.AllowIndex
		cur.AllowFollow = snap.AllowFollow
		cur.ReadingTimeMinutes = content.ReadingTime(cur.ContentJSON, cur.LegacyHTML)
		cur.UpdatedAt = r.machine.Now()

		if err := q.UpdatePost(ctx, cur); err != nil {
			return slugConflict(err, slug.ClassPost, cur.Slug)
		}
		post = cur
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("post revision restored", "post_id", id, "revision_id", revisionID)
	return post, nil
}
