// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/blockcms/internal/repository"
)

// GetPostSettings handles GET /api/v1/post-settings
func (h *Handler) GetPostSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.repos.Settings.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteSuccess(w, s, nil)
}

// UpdatePostSettings handles PUT /api/v1/post-settings
func (h *Handler) UpdatePostSettings(w http.ResponseWriter, r *http.Request) {
	var patch repository.SettingsPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	s, err := h.repos.Settings.Update(r.Context(), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteSuccess(w, s, nil)
}
