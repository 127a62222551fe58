// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/slug"
	"github.com/olegiv/blockcms/internal/store"
)

// PageInput is the payload for creating a page. Slug defaults to a slug
// derived from Title.
type PageInput struct {
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	ContentJSON     json.RawMessage `json:"contentJson"`
	Content         string          `json:"content"`
	IsHome          *bool           `json:"isHome"`
	IsShop          *bool           `json:"isShop"`
	Status          model.Status    `json:"status"`
	PublishedAt     *time.Time      `json:"publishedAt"`
	ScheduledAt     *time.Time      `json:"scheduledAt"`
	NavOrder        int             `json:"navOrder"`
	MetaTitle       string          `json:"metaTitle"`
	MetaDescription string          `json:"metaDescription"`
}

// Validate implements validation.Validatable.
func (in PageInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Slug, append([]validation.Rule{validation.Required}, slugRules...)...),
		validation.Field(&in.Status, statusRule),
		validation.Field(&in.MetaTitle, validation.Length(0, 255)),
		validation.Field(&in.MetaDescription, validation.Length(0, 500)),
	)
}

// PagePatch is a partial page update. Only fields that are present are
// validated and written. IsHome and IsShop only ever set a flag; an
// explicit false is ignored.
type PagePatch struct {
	Title           *string             `json:"title"`
	Slug            *string             `json:"slug"`
	ContentJSON     json.RawMessage     `json:"contentJson"`
	Content         *string             `json:"content"`
	IsHome          *bool               `json:"isHome"`
	IsShop          *bool               `json:"isShop"`
	Status          *model.Status       `json:"status"`
	PublishedAt     Optional[time.Time] `json:"publishedAt"`
	ScheduledAt     Optional[time.Time] `json:"scheduledAt"`
	NavOrder        *int                `json:"navOrder"`
	MetaTitle       *string             `json:"metaTitle"`
	MetaDescription *string             `json:"metaDescription"`
}

// Validate implements validation.Validatable.
func (p PagePatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.Slug, append([]validation.Rule{validation.NilOrNotEmpty}, slugRules...)...),
		validation.Field(&p.Status, statusRule),
		validation.Field(&p.MetaTitle, validation.Length(0, 255)),
		validation.Field(&p.MetaDescription, validation.Length(0, 500)),
	)
}

// PageRepository persists pages and manages the home and shop singletons.
type PageRepository struct {
	db        *store.DB
	machine   *publishing.Machine
	sanitizer *content.Sanitizer
	cache     Invalidator
	logger    *slog.Logger
}

// NewPageRepository creates a PageRepository.
func NewPageRepository(d Deps) *PageRepository {
	d = d.withDefaults()
	return &PageRepository{
		db:        d.DB,
		machine:   d.Machine,
		sanitizer: d.Sanitizer,
		cache:     d.Cache,
		logger:    d.Logger,
	}
}

// Create validates and stores a new page. A true isHome or isShop moves the
// flag to the new page in the same transaction.
func (r *PageRepository) Create(ctx context.Context, in PageInput) (model.Page, error) {
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title)
	}
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	if err := apperr.FromValidation(in.Validate()); err != nil {
		return model.Page{}, err
	}

	doc, err := parseContent(r.logger, in.ContentJSON, slug.ClassPage, in.Slug)
	if err != nil {
		return model.Page{}, err
	}

	now := r.machine.Now()
	page := model.Page{
		Title:           in.Title,
		Slug:            in.Slug,
		ContentJSON:     doc,
		Content:         r.sanitizer.Sanitize(in.Content),
		Status:          in.Status,
		PublishedAt:     utcPtr(in.PublishedAt),
		ScheduledAt:     utcPtr(in.ScheduledAt),
		NavOrder:        in.NavOrder,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.machine.ValidateWrite(nil, page.Lifecycle()); err != nil {
		return model.Page{}, err
	}

	err = r.db.WithTx(ctx, func(q *store.Queries) error {
		if err := slug.NewResolver(q).AssertAvailable(ctx, slug.ClassPage, page.Slug); err != nil {
			return err
		}
		id, err := q.CreatePage(ctx, page)
		if err != nil {
			return slugConflict(err, slug.ClassPage, page.Slug)
		}
		page.ID = id
		return r.applyFlags(ctx, q, &page, in.IsHome, in.IsShop, now)
	})
	if err != nil {
		return model.Page{}, err
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("page created", "page_id", page.ID, "slug", page.Slug, "status", page.Status)
	return page, nil
}

// Update applies patch to page id.
func (r *PageRepository) Update(ctx context.Context, id int64, patch PagePatch) (model.Page, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return model.Page{}, err
	}

	var doc *model.Document
	if patch.ContentJSON != nil {
		d, err := parseContent(r.logger, patch.ContentJSON, slug.ClassPage, derefOr(patch.Slug, ""))
		if err != nil {
			return model.Page{}, err
		}
		doc = &d
	}

	var page model.Page
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetPage(ctx, id)
		if err != nil {
			return notFound(err, "page", id)
		}
		prev := cur.Lifecycle()
		next := cur

		if patch.Slug != nil {
			if err := slug.NewResolver(q).AssertAvailableFor(ctx, slug.ClassPage, *patch.Slug, cur.Slug); err != nil {
				return err
			}
			next.Slug = *patch.Slug
		}
		set(&next.Title, patch.Title)
		if doc != nil {
			next.ContentJSON = *doc
		}
		if patch.Content != nil {
			next.Content = r.sanitizer.Sanitize(*patch.Content)
		}
		set(&next.Status, patch.Status)
		patch.PublishedAt.apply(&next.PublishedAt)
		patch.ScheduledAt.apply(&next.ScheduledAt)
		next.PublishedAt = utcPtr(next.PublishedAt)
		next.ScheduledAt = utcPtr(next.ScheduledAt)
		set(&next.NavOrder, patch.NavOrder)
		set(&next.MetaTitle, patch.MetaTitle)
		set(&next.MetaDescription, patch.MetaDescription)

		if err := r.machine.ValidateWrite(&prev, next.Lifecycle()); err != nil {
			return err
		}

		now := r.machine.Now()
		next.UpdatedAt = now
		if err := q.UpdatePage(ctx, next); err != nil {
			return slugConflict(err, slug.ClassPage, next.Slug)
		}
		if err := r.applyFlags(ctx, q, &next, patch.IsHome, patch.IsShop, now); err != nil {
			return err
		}
		page = next
		return nil
	})
	if err != nil {
		return model.Page{}, err
	}

	r.cache.Invalidate(ctx)
	return page, nil
}

// Publish moves a page to published.
func (r *PageRepository) Publish(ctx context.Context, id int64) (model.Page, error) {
	return r.transition(ctx, id, "published", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Publish(l), nil
	})
}

// Unpublish moves a page back to draft and drops any schedule.
func (r *PageRepository) Unpublish(ctx context.Context, id int64) (model.Page, error) {
	return r.transition(ctx, id, "unpublished", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Unpublish(l, true), nil
	})
}

// Schedule schedules a page for publication at at.
func (r *PageRepository) Schedule(ctx context.Context, id int64, at time.Time) (model.Page, error) {
	return r.transition(ctx, id, "scheduled", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Schedule(l, at)
	})
}

// Archive moves a page to archived.
func (r *PageRepository) Archive(ctx context.Context, id int64) (model.Page, error) {
	return r.transition(ctx, id, "archived", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Archive(l), nil
	})
}

func (r *PageRepository) transition(ctx context.Context, id int64, action string,
	fn func(model.Lifecycle) (model.Lifecycle, error)) (model.Page, error) {
	var page model.Page
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetPage(ctx, id)
		if err != nil {
			return notFound(err, "page", id)
		}
		next, err := fn(cur.Lifecycle())
		if err != nil {
			return err
		}
		if err := publishing.Validate(next); err != nil {
			return err
		}
		cur.SetLifecycle(next)
		cur.UpdatedAt = r.machine.Now()
		if err := q.UpdatePage(ctx, cur); err != nil {
			return err
		}
		page = cur
		return nil
	})
	if err != nil {
		return model.Page{}, err
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("page "+action, "page_id", page.ID, "slug", page.Slug)
	return page, nil
}

// Delete physically removes a page.
func (r *PageRepository) Delete(ctx context.Context, id int64) error {
	ok, err := store.New(r.db).DeletePage(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("page", id)
	}
	r.cache.Invalidate(ctx)
	r.logger.Info("page deleted", "page_id", id)
	return nil
}

// FindByID returns a page.
func (r *PageRepository) FindByID(ctx context.Context, id int64) (model.Page, error) {
	p, err := store.New(r.db).GetPage(ctx, id)
	return p, notFound(err, "page", id)
}

// FindBySlug returns the page with slug s.
func (r *PageRepository) FindBySlug(ctx context.Context, s string) (model.Page, error) {
	p, err := store.New(r.db).GetPageBySlug(ctx, s)
	return p, notFoundBy(err, "page", s)
}

// FindHome returns the page flagged as home.
func (r *PageRepository) FindHome(ctx context.Context) (model.Page, error) {
	p, err := store.New(r.db).GetFlaggedPage(ctx, store.FlagHome)
	return p, notFoundBy(err, "home page", "")
}

// FindShop returns the page flagged as shop.
func (r *PageRepository) FindShop(ctx context.Context) (model.Page, error) {
	p, err := store.New(r.db).GetFlaggedPage(ctx, store.FlagShop)
	return p, notFoundBy(err, "shop page", "")
}

// FindAll returns every page ordered by navOrder.
func (r *PageRepository) FindAll(ctx context.Context) ([]model.Page, error) {
	return store.New(r.db).ListPages(ctx)
}

// CheckSlug reports whether s is free for a page. excludeID names a page
// whose own slug counts as free.
func (r *PageRepository) CheckSlug(ctx context.Context, s string, excludeID int64) (bool, error) {
	return checkSlugFor(ctx, store.New(r.db), slug.ClassPage, s, excludeID,
		func(q *store.Queries, id int64) (string, error) {
			p, err := q.GetPage(ctx, id)
			return p.Slug, err
		})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func derefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
