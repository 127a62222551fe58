// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
)

func (s *testServer) createTerm(prefix, name, slug string) model.Category {
	s.t.Helper()
	rr := s.do(http.MethodPost, prefix, map[string]any{"name": name, "slug": slug})
	requireStatus(s.t, rr, http.StatusCreated)
	return decode[model.Category](s.t, rr).Data
}

func TestCategoryCRUD(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/api/v1/post-categories", map[string]any{
		"name": "Release Notes", "slug": "release-notes", "description": "What shipped",
	})
	requireStatus(t, rr, http.StatusCreated)
	cat := decode[model.Category](t, rr).Data
	assert.Equal(t, "What shipped", cat.Description)

	path := fmt.Sprintf("/api/v1/post-categories/%d", cat.ID)
	rr = s.do(http.MethodGet, path, nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, "release-notes", decode[model.Category](t, rr).Data.Slug)

	rr = s.do(http.MethodPut, path, map[string]any{"name": "Changelog"})
	requireStatus(t, rr, http.StatusOK)
	updated := decode[model.Category](t, rr).Data
	assert.Equal(t, "Changelog", updated.Name)
	assert.Equal(t, "release-notes", updated.Slug)

	rr = s.do(http.MethodGet, "/api/v1/post-categories", nil)
	requireStatus(t, rr, http.StatusOK)
	list := decode[[]model.Category](t, rr)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Meta.Total)

	requireStatus(t, s.do(http.MethodDelete, path, nil), http.StatusNoContent)
	requireStatus(t, s.do(http.MethodGet, path, nil), http.StatusNotFound)
	requireStatus(t, s.do(http.MethodDelete, path, nil), http.StatusNotFound)
}

func TestDeleteCategoryDetachesPosts(t *testing.T) {
	s := newTestServer(t)
	cat := s.createTerm("/api/v1/post-categories", "News", "news")
	p := s.createPost(map[string]any{"title": "Story", "categoryIds": []int64{cat.ID}})
	require.Len(t, p.Categories, 1)

	requireStatus(t, s.do(http.MethodDelete, fmt.Sprintf("/api/v1/post-categories/%d", cat.ID), nil), http.StatusNoContent)

	rr := s.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", p.ID), nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Empty(t, decode[model.Post](t, rr).Data.Categories)
}

func TestTagSlugConflicts(t *testing.T) {
	s := newTestServer(t)
	s.createTerm("/api/v1/post-tags", "Go", "go")

	rr := s.do(http.MethodPost, "/api/v1/post-tags", map[string]any{"name": "Golang", "slug": "go"})
	requireStatus(t, rr, http.StatusConflict)
	assert.Equal(t, "slug_conflict", decodeError(t, rr).Code)

	s.createTerm("/api/v1/post-categories", "Go", "go")

	rr = s.do(http.MethodGet, "/api/v1/post-tags/check-slug?slug=go", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.False(t, decode[SlugAvailability](t, rr).Data.Available)

	rr = s.do(http.MethodGet, "/api/v1/post-categories/check-slug?slug=rust", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.True(t, decode[SlugAvailability](t, rr).Data.Available)
}

func TestTermValidation(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/api/v1/post-tags", map[string]any{"name": ""})
	requireStatus(t, rr, http.StatusBadRequest)
	assert.Contains(t, decodeError(t, rr).Details, "name")

	rr = s.do(http.MethodPut, "/api/v1/post-tags/12", map[string]any{"name": "Missing"})
	requireStatus(t, rr, http.StatusNotFound)
}

func TestPostSettings(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/api/v1/post-settings", nil)
	requireStatus(t, rr, http.StatusOK)
	defaults := decode[model.PostSettings](t, rr).Data
	assert.Equal(t, model.DefaultPostsPerPage, defaults.PostsPerPage)
	assert.True(t, defaults.RSSEnabled)

	rr = s.do(http.MethodPut, "/api/v1/post-settings", map[string]any{"postsPerPage": 5, "blogTitle": "Engineering"})
	requireStatus(t, rr, http.StatusOK)
	saved := decode[model.PostSettings](t, rr).Data
	assert.Equal(t, 5, saved.PostsPerPage)
	assert.Equal(t, "Engineering", saved.BlogTitle)
	assert.True(t, saved.RSSEnabled)

	rr = s.do(http.MethodGet, "/api/v1/post-settings", nil)
	assert.Equal(t, "Engineering", decode[model.PostSettings](t, rr).Data.BlogTitle)

	rr = s.do(http.MethodPut, "/api/v1/post-settings", map[string]any{"postsPerPage": 0})
	requireStatus(t, rr, http.StatusBadRequest)
	assert.Contains(t, decodeError(t, rr).Details, "postsPerPage")
}
