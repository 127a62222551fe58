// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/store"
)

// SweepResult counts the entities promoted by one sweep.
type SweepResult struct {
	Pages    int `json:"pages"`
	Posts    int `json:"posts"`
	Failures int `json:"failures"`
}

// Sweeper promotes due scheduled pages and posts to published.
type Sweeper struct {
	db        *store.DB
	machine   *publishing.Machine
	revisions RevisionRecorder
	cache     Invalidator
	logger    *slog.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(d Deps) *Sweeper {
	d = d.withDefaults()
	return &Sweeper{
		db:        d.DB,
		machine:   d.Machine,
		revisions: d.Revisions,
		cache:     d.Cache,
		logger:    d.Logger,
	}
}

// PublishDue runs one sweep. Each entity is promoted in its own
// transaction; a failure is logged and the sweep moves on. Only a failure
// to list due entities is returned.
func (s *Sweeper) PublishDue(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.machine.Now()
	q := store.New(s.db)

	pages, err := q.ListDuePages(ctx, now)
	if err != nil {
		return res, fmt.Errorf("listing due pages: %w", err)
	}
	for _, p := range pages {
		promoted, err := s.promotePage(ctx, p.ID)
		if err != nil {
			res.Failures++
			s.logger.Error("failed to publish scheduled page",
				"category", model.EventCategoryScheduler,
				"page_id", p.ID,
				"slug", p.Slug,
				"error", err,
			)
			continue
		}
		if promoted {
			res.Pages++
			s.logger.Info("published scheduled page", "page_id", p.ID, "slug", p.Slug, "scheduled_at", p.ScheduledAt)
		}
	}

	posts, err := q.ListDuePosts(ctx, now)
	if err != nil {
		return res, fmt.Errorf("listing due posts: %w", err)
	}
	for _, p := range posts {
		before, promoted, err := s.promotePost(ctx, p.ID)
		if err != nil {
			res.Failures++
			s.logger.Error("failed to publish scheduled post",
				"category", model.EventCategoryScheduler,
				"post_id", p.ID,
				"slug", p.Slug,
				"error", err,
			)
			continue
		}
		if promoted {
			res.Posts++
			s.revisions.Snapshot(context.WithoutCancel(ctx), p.ID, before, nil)
			s.logger.Info("published scheduled post", "post_id", p.ID, "slug", p.Slug, "scheduled_at", p.ScheduledAt)
		}
	}

	if res.Pages+res.Posts > 0 {
		s.cache.Invalidate(ctx)
	}
	return res, nil
}

// promotePage re-reads the page inside the transaction so a concurrent
// unpublish or reschedule wins over the stale listing.
func (s *Sweeper) promotePage(ctx context.Context, id int64) (bool, error) {
	var promoted bool
	err := s.db.WithTx(ctx, func(q *store.Queries) error {
		p, err := q.GetPage(ctx, id)
		if err != nil {
			return err
		}
		next, ok := s.machine.Promote(p.Lifecycle())
		if !ok {
			return nil
		}
		p.SetLifecycle(next)
		p.UpdatedAt = s.machine.Now()
		if err := q.UpdatePage(ctx, p); err != nil {
			return err
		}
		promoted = true
		return nil
	})
	return promoted, err
}

func (s *Sweeper) promotePost(ctx context.Context, id int64) (model.Post, bool, error) {
	var before model.Post
	var promoted bool
	err := s.db.WithTx(ctx, func(q *store.Queries) error {
		p, err := q.GetPost(ctx, id)
		if err != nil {
			return err
		}
		next, ok := s.machine.Promote(p.Lifecycle())
		if !ok {
			return nil
		}
		before = p
		p.SetLifecycle(next)
		p.UpdatedAt = s.machine.Now()
		if err := q.UpdatePost(ctx, p); err != nil {
			return err
		}
		promoted = true
		return nil
	})
	return before, promoted, err
}
