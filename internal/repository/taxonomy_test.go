// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
)

func TestCategoryCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.repos.Categories.Create(ctx, TermInput{Name: "Release Notes", Description: "What changed"})
	require.NoError(t, err)
	assert.Equal(t, "release-notes", c.Slug)

	_, err = f.repos.Categories.Create(ctx, TermInput{Name: ""})
	assert.True(t, apperr.IsValidation(err))

	c, err = f.repos.Categories.Update(ctx, c.ID, TermPatch{Name: ptr("Changelog"), Slug: ptr("changelog")})
	require.NoError(t, err)
	assert.Equal(t, "Changelog", c.Name)
	assert.Equal(t, "What changed", c.Description)

	got, err := f.repos.Categories.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "changelog", got.Slug)

	all, err := f.repos.Categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	ok, err := f.repos.Categories.CheckSlug(ctx, "changelog", c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.repos.Categories.Update(ctx, 999, TermPatch{Name: ptr("x")})
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(f.repos.Categories.Delete(ctx, 999)))
}

func TestTagUpdateSlugConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.repos.Tags.Create(ctx, TermInput{Name: "Go"})
	require.NoError(t, err)
	rust, err := f.repos.Tags.Create(ctx, TermInput{Name: "Rust"})
	require.NoError(t, err)

	_, err = f.repos.Tags.Update(ctx, rust.ID, TermPatch{Slug: ptr("go")})
	assert.True(t, apperr.IsSlugConflict(err))

	_, err = f.repos.Tags.Update(ctx, rust.ID, TermPatch{Slug: ptr("Bad Slug")})
	assert.True(t, apperr.IsValidation(err))

	got, err := f.repos.Tags.FindByID(ctx, rust.ID)
	require.NoError(t, err)
	assert.Equal(t, "rust", got.Slug)

	ok, err := f.repos.Tags.CheckSlug(ctx, "go", rust.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletingTermsDetachesPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.repos.Categories.Create(ctx, TermInput{Name: "News"})
	require.NoError(t, err)
	tag, err := f.repos.Tags.Create(ctx, TermInput{Name: "Go"})
	require.NoError(t, err)
	p, err := f.repos.Posts.Create(ctx, PostInput{Title: "Tagged", CategoryIDs: []int64{cat.ID}, TagIDs: []int64{tag.ID}})
	require.NoError(t, err)

	require.NoError(t, f.repos.Categories.Delete(ctx, cat.ID))
	require.NoError(t, f.repos.Tags.Delete(ctx, tag.ID))

	got, err := f.repos.Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Categories)
	assert.Empty(t, got.Tags)

	tags, err := f.repos.Tags.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPostSettings(), s)

	s, err = f.repos.Settings.Update(ctx, SettingsPatch{BlogTitle: ptr("Notes"), DefaultOGImageID: Some(int64(5))})
	require.NoError(t, err)
	assert.Equal(t, "Notes", s.BlogTitle)
	assert.Equal(t, model.DefaultPostsPerPage, s.PostsPerPage)
	assert.True(t, s.RSSEnabled)

	s, err = f.repos.Settings.Update(ctx, SettingsPatch{RSSEnabled: ptr(false), DefaultOGImageID: Null[int64]()})
	require.NoError(t, err)
	assert.Equal(t, "Notes", s.BlogTitle)
	assert.False(t, s.RSSEnabled)
	assert.Nil(t, s.DefaultOGImageID)

	got, err := f.repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.BlogTitle)
	assert.False(t, got.RSSEnabled)

	_, err = f.repos.Settings.Update(ctx, SettingsPatch{PostsPerPage: ptr(0)})
	assert.True(t, apperr.IsValidation(err))
}
