// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the content engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/repository"
	"github.com/olegiv/blockcms/internal/scheduler"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/slug"
	"github.com/olegiv/blockcms/internal/store"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 2 << 20

// SchedulerControl exposes the sweep scheduler to the API.
type SchedulerControl interface {
	Jobs() []scheduler.JobInfo
	RunOnce(ctx context.Context) (repository.SweepResult, error)
}

// Deps are the collaborators of the API handlers. Cache, Events and
// Scheduler may be nil.
type Deps struct {
	DB        *store.DB
	Repos     *repository.Repositories
	Machine   *publishing.Machine
	Cache     *cache.ContentCache
	Events    *service.EventService
	Scheduler SchedulerControl
	Logger    *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *store.DB
	repos     *repository.Repositories
	machine   *publishing.Machine
	cache     *cache.ContentCache
	events    *service.EventService
	scheduler SchedulerControl
	logger    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Machine == nil {
		d.Machine = publishing.New(nil)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		db:        d.DB,
		repos:     d.Repos,
		machine:   d.Machine,
		cache:     d.Cache,
		events:    d.Events,
		scheduler: d.Scheduler,
		logger:    d.Logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Pages   int `json:"pages"`
}

func newMeta(total, page, perPage int) *Meta {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &Meta{Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteBadRequest writes a 400 response for malformed requests.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request", message, nil)
}

// writeError maps typed engine errors to status codes. Anything else is
// logged with the request id and reported as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *apperr.ValidationError
		conflict *apperr.SlugConflictError
		missing  *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "validation_error", verr.Message, verr.Fields)
	case errors.As(err, &conflict):
		middleware.WriteAPIError(w, r, http.StatusConflict, "slug_conflict", conflict.Error(),
			map[string]string{"slug": conflict.Slug})
	case errors.As(err, &missing):
		middleware.WriteAPIError(w, r, http.StatusNotFound, "not_found", missing.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		middleware.WriteAPIError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out", nil)
	default:
		h.logger.Error("request failed",
			"category", "http",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst unchanged
// when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		middleware.WriteAPIError(w, r, http.StatusRequestEntityTooLarge, "bad_request", "request body too large", nil)
	case errors.Is(err, io.EOF):
		WriteBadRequest(w, r, "request body is required")
	default:
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "validation_error", verr.Message, verr.Fields)
			return false
		}
		WriteBadRequest(w, r, "invalid JSON body")
	}
	return false
}

// parseID reads a positive int64 URL parameter.
func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, r, "invalid "+param)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// queryInt64 reads an optional int64 query parameter.
func queryInt64(r *http.Request, name string) (*int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// queryBool reads an optional boolean query parameter.
func queryBool(r *http.Request, name string) (*bool, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &b, true
}

// SlugAvailability is the check-slug response.
type SlugAvailability struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

type slugChecker func(ctx context.Context, s string, excludeID int64) (bool, error)

// checkSlug handles GET .../check-slug?slug=&excludeId= for one slug class.
// The candidate is normalized before the lookup.
func (h *Handler) checkSlug(check slugChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := slug.Make(r.URL.Query().Get("slug"))
		if s == "" {
			h.writeError(w, r, apperr.Invalid("slug", "slug is required"))
			return
		}
		exclude, ok := queryInt64(r, "excludeId")
		if !ok {
			WriteBadRequest(w, r, "invalid excludeId")
			return
		}
		var excludeID int64
		if exclude != nil {
			excludeID = *exclude
		}

		available, err := check(r.Context(), s, excludeID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteSuccess(w, SlugAvailability{Slug: s, Available: available}, nil)
	}
}
