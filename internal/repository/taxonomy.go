// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/slug"
	"github.com/olegiv/blockcms/internal/store"
)

// TermInput creates a category or tag. Description is ignored for tags.
type TermInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Validate implements validation.Validatable.
func (in TermInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Slug, append([]validation.Rule{validation.Required}, slugRules...)...),
		validation.Field(&in.Description, validation.Length(0, 1000)),
	)
}

// TermPatch is a partial category or tag update.
type TermPatch struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// Validate implements validation.Validatable.
func (p TermPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.Slug, append([]validation.Rule{validation.NilOrNotEmpty}, slugRules...)...),
		validation.Field(&p.Description, validation.Length(0, 1000)),
	)
}

func (in *TermInput) normalize() error {
	if in.Slug == "" {
		in.Slug = slug.Make(in.Name)
	}
	return apperr.FromValidation(in.Validate())
}

// CategoryRepository persists post categories.
type CategoryRepository struct {
	db      *store.DB
	machine *publishing.Machine
	cache   Invalidator
	logger  *slog.Logger
}

// NewCategoryRepository creates a CategoryRepository.
func NewCategoryRepository(d Deps) *CategoryRepository {
	d = d.withDefaults()
	return &CategoryRepository{db: d.DB, machine: d.Machine, cache: d.Cache, logger: d.Logger}
}

// Create stores a new category.
func (r *CategoryRepository) Create(ctx context.Context, in TermInput) (model.Category, error) {
	if err := in.normalize(); err != nil {
		return model.Category{}, err
	}
	now := r.machine.Now()
	c := model.Category{Name: in.Name, Slug: in.Slug, Description: in.Description, CreatedAt: now, UpdatedAt: now}

	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		if err := slug.NewResolver(q).AssertAvailable(ctx, slug.ClassCategory, c.Slug); err != nil {
			return err
		}
		id, err := q.CreateCategory(ctx, c)
		if err != nil {
			return slugConflict(err, slug.ClassCategory, c.Slug)
		}
		c.ID = id
		return nil
	})
	if err != nil {
		return model.Category{}, err
	}
	r.cache.Invalidate(ctx)
	return c, nil
}

// Update applies patch to category id.
func (r *CategoryRepository) Update(ctx context.Context, id int64, patch TermPatch) (model.Category, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return model.Category{}, err
	}
	var c model.Category
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetCategory(ctx, id)
		if err != nil {
			return notFound(err, "category", id)
		}
		if patch.Slug != nil {
			if err := slug.NewResolver(q).AssertAvailableFor(ctx, slug.ClassCategory, *patch.Slug, cur.Slug); err != nil {
				return err
			}
			cur.Slug = *patch.Slug
		}
		set(&cur.Name, patch.Name)
		set(&cur.Description, patch.Description)
		cur.UpdatedAt = r.machine.Now()
		if err := q.UpdateCategory(ctx, cur); err != nil {
			return slugConflict(err, slug.ClassCategory, cur.Slug)
		}
		c = cur
		return nil
	})
	if err != nil {
		return model.Category{}, err
	}
	r.cache.Invalidate(ctx)
	return c, nil
}

// Delete removes a category and detaches it from every post.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	var ok bool
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		var err error
		ok, err = q.DeleteCategory(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("category", id)
	}
	r.cache.Invalidate(ctx)
	r.logger.Info("category deleted", "category_id", id)
	return nil
}

// FindByID returns a category.
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	c, err := store.New(r.db).GetCategory(ctx, id)
	return c, notFound(err, "category", id)
}

// FindAll returns every category ordered by name.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	return store.New(r.db).ListCategories(ctx)
}

// CheckSlug reports whether s is free for a category.
func (r *CategoryRepository) CheckSlug(ctx context.Context, s string, excludeID int64) (bool, error) {
	return checkSlugFor(ctx, store.New(r.db), slug.ClassCategory, s, excludeID,
		func(q *store.Queries, id int64) (string, error) {
			c, err := q.GetCategory(ctx, id)
			return c.Slug, err
		})
}

// TagRepository persists post tags.
type TagRepository struct {
	db      *store.DB
	machine *publishing.Machine
	cache   Invalidator
	logger  *slog.Logger
}

// NewTagRepository creates a TagRepository.
func NewTagRepository(d Deps) *TagRepository {
	d = d.withDefaults()
	return &TagRepository{db: d.DB, machine: d.Machine, cache: d.Cache, logger: d.Logger}
}

// Create stores a new tag.
func (r *TagRepository) Create(ctx context.Context, in TermInput) (model.Tag, error) {
	if err := in.normalize(); err != nil {
		return model.Tag{}, err
	}
	now := r.machine.Now()
	t := model.Tag{Name: in.Name, Slug: in.Slug, CreatedAt: now, UpdatedAt: now}

	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		if err := slug.NewResolver(q).AssertAvailable(ctx, slug.ClassTag, t.Slug); err != nil {
			return err
		}
		id, err := q.CreateTag(ctx, t)
		if err != nil {
			return slugConflict(err, slug.ClassTag, t.Slug)
		}
		t.ID = id
		return nil
	})
	if err != nil {
		return model.Tag{}, err
	}
	r.cache.Invalidate(ctx)
	return t, nil
}

// Update applies patch to tag id.
func (r *TagRepository) Update(ctx context.Context, id int64, patch TermPatch) (model.Tag, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return model.Tag{}, err
	}
	var t model.Tag
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetTag(ctx, id)
		if err != nil {
			return notFound(err, "tag", id)
		}
		if patch.Slug != nil {
			if err := slug.NewResolver(q).AssertAvailableFor(ctx, slug.ClassTag, *patch.Slug, cur.Slug); err != nil {
				return err
			}
			cur.Slug = *patch.Slug
		}
		set(&cur.Name, patch.Name)
		cur.UpdatedAt = r.machine.Now()
		if err := q.UpdateTag(ctx, cur); err != nil {
			return slugConflict(err, slug.ClassTag, cur.Slug)
		}
		t = cur
		return nil
	})
	if err != nil {
		return model.Tag{}, err
	}
	r.cache.Invalidate(ctx)
	return t, nil
}

// Delete removes a tag and detaches it from every post.
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	var ok bool
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		var err error
		ok, err = q.DeleteTag(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("tag", id)
	}
	r.cache.Invalidate(ctx)
	r.logger.Info("tag deleted", "tag_id", id)
	return nil
}

// FindByID returns a tag.
func (r *TagRepository) FindByID(ctx context.Context, id int64) (model.Tag, error) {
	t, err := store.New(r.db).GetTag(ctx, id)
	return t, notFound(err, "tag", id)
}

// FindAll returns every tag ordered by name.
func (r *TagRepository) FindAll(ctx context.Context) ([]model.Tag, error) {
	return store.New(r.db).ListTags(ctx)
}

// CheckSlug reports whether s is free for a tag.
func (r *TagRepository) CheckSlug(ctx context.Context, s string, excludeID int64) (bool, error) {
	return checkSlugFor(ctx, store.New(r.db), slug.ClassTag, s, excludeID,
		func(q *store.Queries, id int64) (string, error) {
			t, err := q.GetTag(ctx, id)
			return t.Slug, err
		})
}
