// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package revision records post snapshots taken on publish.
//
// Snapshots are append-only. Recording one never fails the publish that
// triggered it: errors are logged and dropped.
package revision

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// Store appends and lists post revisions.
type Store struct {
	db     *store.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a revision Store.
func NewStore(db *store.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// Snapshot records post as a revision of postID. Failures are logged
// with the post id and swallowed.
func (s *Store) Snapshot(ctx context.Context, postID int64, post model.Post, userID *int64) {
	rev := model.Revision{
		PostID:          postID,
		Snapshot:        model.SnapshotOf(post),
		CreatedByUserID: userID,
		CreatedAt:       s.now().UTC(),
	}

	id, err := store.New(s.db).CreateRevision(ctx, rev)
	if err != nil {
		s.logger.Warn("failed to record post revision",
			"category", model.EventCategoryRevision,
			"post_id", postID,
			"error", err,
		)
		return
	}

	s.logger.Debug("post revision recorded", "post_id", postID, "revision_id", id)
}
