// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/version"
)

// HealthStatus is the /healthz response.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Version   version.Info     `json:"version"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.checkDatabase(r.Context())
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    map[string]Check{"database": db},
		Version:   version.Get(),
	}
	if h.cache != nil {
		backend := h.cache.Backend()
		status.Checks["cache"] = h.checkCache(r.Context(), backend)
		if sp, ok := backend.(cache.StatsProvider); ok {
			stats := sp.Stats()
			status.Cache = &stats
		}
	}
	// The public read path loads from the database when the cache is down.
	code := http.StatusOK
	if db.Status != "healthy" {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, status)
}

func (h *Handler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database health check failed", "category", model.EventCategorySystem, "error", err)
		return Check{Status: "unhealthy", Message: "database unreachable"}
	}
	return Check{Status: "healthy", Latency: time.Since(start).Round(time.Microsecond).String()}
}

func (h *Handler) checkCache(ctx context.Context, backend cache.Cache) Check {
	p, ok := backend.(cache.Pinger)
	if !ok {
		return Check{Status: "healthy", Message: "in-process"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		h.logger.Warn("cache health check failed", "category", model.EventCategoryCache, "error", err)
		return Check{Status: "unhealthy", Message: "cache unreachable"}
	}
	return Check{Status: "healthy", Latency: time.Since(start).Round(time.Microsecond).String()}
}

// ListEvents handles GET /api/v1/events?limit=
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		WriteBadRequest(w, r, "invalid limit")
		return
	}
	events, err := h.events.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	WriteSuccess(w, events, nil)
}

// SchedulerJobs handles GET /api/v1/scheduler/jobs
func (h *Handler) SchedulerJobs(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.scheduler.Jobs(), nil)
}

// RunSweep handles POST /api/v1/scheduler/run: one synchronous sweep.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.scheduler.RunOnce(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("scheduled publish triggered",
		"pages", res.Pages,
		"posts", res.Posts,
		"request_id", middleware.GetRequestID(r.Context()))
	WriteSuccess(w, res, nil)
}
