// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/blockcms/internal/repository"
)

// termRepository is the shape shared by the category and tag repositories.
type termRepository[T any] interface {
	Create(ctx context.Context, in repository.TermInput) (T, error)
	Update(ctx context.Context, id int64, patch repository.TermPatch) (T, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	CheckSlug(ctx context.Context, s string, excludeID int64) (bool, error)
}

// termHandlers serves /post-categories and /post-tags.
type termHandlers[T any] struct {
	h    *Handler
	repo termRepository[T]
}

func newTermHandlers[T any](h *Handler, repo termRepository[T]) termHandlers[T] {
	return termHandlers[T]{h: h, repo: repo}
}

// List handles GET /api/v1/post-{categories,tags}
func (t termHandlers[T]) List(w http.ResponseWriter, r *http.Request) {
	terms, err := t.repo.FindAll(r.Context())
	if err != nil {
		t.h.writeError(w, r, err)
		return
	}
	if terms == nil {
		terms = []T{}
	}
	WriteSuccess(w, terms, newMeta(len(terms), 1, len(terms)))
}

// Get handles GET /api/v1/post-{categories,tags}/{id}
func (t termHandlers[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	t.result(w, r, http.StatusOK)(t.repo.FindByID(r.Context(), id))
}

// Create handles POST /api/v1/post-{categories,tags}
func (t termHandlers[T]) Create(w http.ResponseWriter, r *http.Request) {
	var in repository.TermInput
	if !decodeJSON(w, r, &in, false) {
		return
	}
	t.result(w, r, http.StatusCreated)(t.repo.Create(r.Context(), in))
}

// Update handles PUT /api/v1/post-{categories,tags}/{id}
func (t termHandlers[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var patch repository.TermPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	t.result(w, r, http.StatusOK)(t.repo.Update(r.Context(), id, patch))
}

// Delete handles DELETE /api/v1/post-{categories,tags}/{id}
func (t termHandlers[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := t.repo.Delete(r.Context(), id); err != nil {
		t.h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckSlug handles GET /api/v1/post-{categories,tags}/check-slug
func (t termHandlers[T]) CheckSlug(w http.ResponseWriter, r *http.Request) {
	t.h.checkSlug(t.repo.CheckSlug)(w, r)
}

func (t termHandlers[T]) result(w http.ResponseWriter, r *http.Request, status int) func(T, error) {
	return func(v T, err error) {
		if err != nil {
			t.h.writeError(w, r, err)
			return
		}
		WriteJSON(w, status, Response{Data: v})
	}
}
