// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/slug"
)

// Public reads go through the content cache. Visibility is evaluated on
// every request, after the cache, so an entry cached before its publish
// time is still hidden until that time passes.

func cached[T any](ctx context.Context, h *Handler, key string, load func(context.Context) (T, error)) (T, error) {
	if h.cache == nil {
		return load(ctx)
	}
	return cache.Load(ctx, h.cache, key, load)
}

// PublicHomePage handles GET /api/v1/public/pages/home
func (h *Handler) PublicHomePage(w http.ResponseWriter, r *http.Request) {
	p, err := cached(r.Context(), h, cache.KeyHomePage, h.repos.Pages.FindHome)
	h.writeVisiblePage(w, r, p, "home", err)
}

// PublicShopPage handles GET /api/v1/public/pages/shop
func (h *Handler) PublicShopPage(w http.ResponseWriter, r *http.Request) {
	p, err := cached(r.Context(), h, cache.KeyShopPage, h.repos.Pages.FindShop)
	h.writeVisiblePage(w, r, p, "shop", err)
}

// PublicPage handles GET /api/v1/public/pages/{slug}
func (h *Handler) PublicPage(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.IsValid(s) {
		h.writeError(w, r, apperr.NotFoundBy("page", s))
		return
	}
	p, err := cached(r.Context(), h, cache.PageKey(s), func(ctx context.Context) (model.Page, error) {
		return h.repos.Pages.FindBySlug(ctx, s)
	})
	h.writeVisiblePage(w, r, p, s, err)
}

// PublicPosts handles GET /api/v1/public/posts. Only visible posts are
// listed; the status filter is ignored.
func (h *Handler) PublicPosts(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}
	list, err := h.repos.Posts.ListVisible(r.Context(), opts)
	h.writePostList(w, r, list, err)
}

// PublicPost handles GET /api/v1/public/posts/{slug}
func (h *Handler) PublicPost(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.IsValid(s) {
		h.writeError(w, r, apperr.NotFoundBy("post", s))
		return
	}
	p, err := cached(r.Context(), h, cache.PostKey(s), func(ctx context.Context) (model.Post, error) {
		return h.repos.Posts.FindBySlug(ctx, s)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.machine.IsPubliclyVisible(p.Lifecycle()) {
		h.writeError(w, r, apperr.NotFoundBy("post", s))
		return
	}
	WriteSuccess(w, p, nil)
}

func (h *Handler) writeVisiblePage(w http.ResponseWriter, r *http.Request, p model.Page, key string, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.machine.IsPubliclyVisible(p.Lifecycle()) {
		h.writeError(w, r, apperr.NotFoundBy("page", key))
		return
	}
	WriteSuccess(w, p, nil)
}
