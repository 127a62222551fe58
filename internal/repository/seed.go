// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// Default seed content
const (
	DefaultHomeTitle = "Home"
	DefaultHomeSlug  = "home"
)

// Seed creates a published home page and the settings row on an empty
// database. It does nothing when any page already exists.
func (r *Repositories) Seed(ctx context.Context) error {
	pages, err := r.Pages.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("checking for pages: %w", err)
	}
	if len(pages) > 0 {
		r.Pages.logger.Info("pages already exist, skipping seed")
		return nil
	}

	doc := model.Document{
		Version: model.DocumentVersion,
		Blocks: []model.Block{{
			ID:   uuid.NewString(),
			Type: "hero",
			Data: map[string]any{
				"title":    "Welcome",
				"subtitle": "Edit this page to get started.",
			},
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding home content: %w", err)
	}

	home := true
	page, err := r.Pages.Create(ctx, PageInput{
		Title:       DefaultHomeTitle,
		Slug:        DefaultHomeSlug,
		ContentJSON: raw,
		IsHome:      &home,
	})
	if err != nil {
		return fmt.Errorf("creating home page: %w", err)
	}
	if _, err := r.Pages.Publish(ctx, page.ID); err != nil {
		return fmt.Errorf("publishing home page: %w", err)
	}

	_, err = store.New(r.Pages.db).GetPostSettings(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := r.Settings.Update(ctx, SettingsPatch{}); err != nil {
			return fmt.Errorf("saving default settings: %w", err)
		}
	case err != nil:
		return fmt.Errorf("checking settings: %w", err)
	}

	r.Pages.logger.Info("seeded home page", "page_id", page.ID, "slug", page.Slug)
	return nil
}
