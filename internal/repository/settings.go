// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"database/sql"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/store"
)

// SettingsPatch is a partial post settings update.
type SettingsPatch struct {
	PostsPerPage     *int            `json:"postsPerPage"`
	BlogTitle        *string         `json:"blogTitle"`
	BlogDescription  *string         `json:"blogDescription"`
	DefaultOGImageID Optional[int64] `json:"defaultOgImageId"`
	RSSEnabled       *bool           `json:"rssEnabled"`
}

// Validate implements validation.Validatable.
func (p SettingsPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PostsPerPage, validation.NilOrNotEmpty, validation.Min(1), validation.Max(MaxPageSize)),
		validation.Field(&p.BlogTitle, validation.Length(0, 255)),
		validation.Field(&p.BlogDescription, validation.Length(0, 1000)),
	)
}

// SettingsRepository reads and upserts the post settings row.
type SettingsRepository struct {
	db      *store.DB
	machine *publishing.Machine
	cache   Invalidator
}

// NewSettingsRepository creates a SettingsRepository.
func NewSettingsRepository(d Deps) *SettingsRepository {
	d = d.withDefaults()
	return &SettingsRepository{db: d.DB, machine: d.Machine, cache: d.Cache}
}

// Get returns the stored settings, or the defaults before the first save.
func (r *SettingsRepository) Get(ctx context.Context) (model.PostSettings, error) {
	return loadSettings(ctx, store.New(r.db))
}

// Update merges patch into the current settings and upserts the row.
func (r *SettingsRepository) Update(ctx context.Context, patch SettingsPatch) (model.PostSettings, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return model.PostSettings{}, err
	}
	var s model.PostSettings
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := loadSettings(ctx, q)
		if err != nil {
			return err
		}
		set(&cur.PostsPerPage, patch.PostsPerPage)
		set(&cur.BlogTitle, patch.BlogTitle)
		set(&cur.BlogDescription, patch.BlogDescription)
		patch.DefaultOGImageID.apply(&cur.DefaultOGImageID)
		set(&cur.RSSEnabled, patch.RSSEnabled)
		cur.UpdatedAt = r.machine.Now()
		if err := q.UpsertPostSettings(ctx, cur); err != nil {
			return err
		}
		s = cur
		return nil
	})
	if err != nil {
		return model.PostSettings{}, err
	}
	r.cache.Invalidate(ctx)
	return s, nil
}

func loadSettings(ctx context.Context, q *store.Queries) (model.PostSettings, error) {
	s, err := q.GetPostSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultPostSettings(), nil
	}
	return s, err
}
