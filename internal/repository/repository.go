// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package repository is the content persistence facade. It owns every
// transaction boundary: input is validated and sanitized first, then slug
// checks, lifecycle transitions and singleton flag moves run inside one
// transaction, and side effects such as revision snapshots and cache
// invalidation run after commit.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/slug"
	"github.com/olegiv/blockcms/internal/store"
)

// RevisionRecorder snapshots a post. Implementations must not fail the
// caller; see revision.Store.
type RevisionRecorder interface {
	Snapshot(ctx context.Context, postID int64, post model.Post, userID *int64)
}

// Invalidator drops cached public content after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Deps are the collaborators shared by all repositories.
type Deps struct {
	DB        *store.DB
	Machine   *publishing.Machine
	Sanitizer *content.Sanitizer
	Revisions RevisionRecorder
	Cache     Invalidator
	Logger    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Machine == nil {
		d.Machine = publishing.New(nil)
	}
	if d.Sanitizer == nil {
		d.Sanitizer = content.NewSanitizer()
	}
	if d.Revisions == nil {
		d.Revisions = noopRecorder{}
	}
	if d.Cache == nil {
		d.Cache = noopInvalidator{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

type noopRecorder struct{}

func (noopRecorder) Snapshot(context.Context, int64, model.Post, *int64) {}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

// Repositories bundles the content repositories built from one Deps.
type Repositories struct {
	Pages      *PageRepository
	Posts      *PostRepository
	Categories *CategoryRepository
	Tags       *TagRepository
	Settings   *SettingsRepository
	Sweeper    *Sweeper
}

// NewRepositories wires every repository.
func NewRepositories(d Deps) *Repositories {
	d = d.withDefaults()
	return &Repositories{
		Pages:      NewPageRepository(d),
		Posts:      NewPostRepository(d),
		Categories: NewCategoryRepository(d),
		Tags:       NewTagRepository(d),
		Settings:   NewSettingsRepository(d),
		Sweeper:    NewSweeper(d),
	}
}

// notFound maps a missing row to a NotFoundError.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity, id)
	}
	return err
}

func notFoundBy(err error, entity, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundBy(entity, key)
	}
	return err
}

// slugConflict maps a UNIQUE violation that slipped past the resolver to a
// SlugConflictError.
func slugConflict(err error, class slug.Class, s string) error {
	if store.IsUniqueViolation(err) {
		return &apperr.SlugConflictError{Class: string(class), Slug: s}
	}
	return err
}

// parseContent validates raw contentJson and logs unknown block types.
func parseContent(logger *slog.Logger, raw []byte, class slug.Class, s string) (model.Document, error) {
	doc, warnings, err := content.ParseJSON(raw)
	if err != nil {
		return model.Document{}, err
	}
	for _, w := range warnings {
		logger.Warn("content validation warning",
			"category", string(class),
			"slug", s,
			"warning", w,
		)
	}
	return doc, nil
}

// checkSlugFor answers an availability query for class, treating the slug
// currently held by excludeID as free. currentSlug loads that slug and
// reports sql.ErrNoRows when the entity does not exist.
func checkSlugFor(ctx context.Context, q *store.Queries, class slug.Class, candidate string, excludeID int64,
	currentSlug func(*store.Queries, int64) (string, error)) (bool, error) {
	current := ""
	if excludeID > 0 {
		s, err := currentSlug(q, excludeID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		current = s
	}
	return slug.NewResolver(q).IsAvailableFor(ctx, class, candidate, current)
}
