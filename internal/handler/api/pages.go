// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/repository"
)

// ScheduleRequest is the body of a schedule call.
type ScheduleRequest struct {
	ScheduledAt *time.Time `json:"scheduledAt"`
}

func (req ScheduleRequest) at() (time.Time, error) {
	if req.ScheduledAt == nil {
		return time.Time{}, apperr.Invalid("scheduledAt", "scheduledAt is required")
	}
	return *req.ScheduledAt, nil
}

// ListPages handles GET /api/v1/pages
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.repos.Pages.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if pages == nil {
		pages = []model.Page{}
	}
	WriteSuccess(w, pages, newMeta(len(pages), 1, len(pages)))
}

// GetPage handles GET /api/v1/pages/{id}
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.FindByID)
}

// GetHomePage handles GET /api/v1/pages/home
func (h *Handler) GetHomePage(w http.ResponseWriter, r *http.Request) {
	h.pageResult(w, r, http.StatusOK)(h.repos.Pages.FindHome(r.Context()))
}

// GetShopPage handles GET /api/v1/pages/shop
func (h *Handler) GetShopPage(w http.ResponseWriter, r *http.Request) {
	h.pageResult(w, r, http.StatusOK)(h.repos.Pages.FindShop(r.Context()))
}

// CheckPageSlug handles GET /api/v1/pages/check-slug
func (h *Handler) CheckPageSlug(w http.ResponseWriter, r *http.Request) {
	h.checkSlug(h.repos.Pages.CheckSlug)(w, r)
}

// CreatePage handles POST /api/v1/pages
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var in repository.PageInput
	if !decodeJSON(w, r, &in, false) {
		return
	}
	h.pageResult(w, r, http.StatusCreated)(h.repos.Pages.Create(r.Context(), in))
}

// UpdatePage handles PUT /api/v1/pages/{id}
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var patch repository.PagePatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	h.pageResult(w, r, http.StatusOK)(h.repos.Pages.Update(r.Context(), id, patch))
}

// DeletePage handles DELETE /api/v1/pages/{id}. Pages are deleted outright.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repos.Pages.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishPage handles POST /api/v1/pages/{id}/publish
func (h *Handler) PublishPage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.Publish)
}

// UnpublishPage handles POST /api/v1/pages/{id}/unpublish
func (h *Handler) UnpublishPage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.Unpublish)
}

// SchedulePage handles POST /api/v1/pages/{id}/schedule
func (h *Handler) SchedulePage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ScheduleRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	at, err := req.at()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.pageResult(w, r, http.StatusOK)(h.repos.Pages.Schedule(r.Context(), id, at))
}

// ArchivePage handles POST /api/v1/pages/{id}/archive
func (h *Handler) ArchivePage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.Archive)
}

// SetHomePage handles POST /api/v1/pages/{id}/set-home
func (h *Handler) SetHomePage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.SetHome)
}

// SetShopPage handles POST /api/v1/pages/{id}/set-shop
func (h *Handler) SetShopPage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.SetShop)
}

// UnsetHomePage handles POST /api/v1/pages/{id}/unset-home
func (h *Handler) UnsetHomePage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.UnsetHome)
}

// UnsetShopPage handles POST /api/v1/pages/{id}/unset-shop
func (h *Handler) UnsetShopPage(w http.ResponseWriter, r *http.Request) {
	h.pageByID(w, r, h.repos.Pages.UnsetShop)
}

// pageByID runs fn with the {id} URL parameter and writes the page it returns.
func (h *Handler) pageByID(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (model.Page, error)) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	h.pageResult(w, r, http.StatusOK)(fn(r.Context(), id))
}

func (h *Handler) pageResult(w http.ResponseWriter, r *http.Request, status int) func(model.Page, error) {
	return func(p model.Page, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, status, Response{Data: p})
	}
}
