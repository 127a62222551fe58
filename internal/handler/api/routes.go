// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
)

// RouterConfig configures the middleware stack around the API.
type RouterConfig struct {
	IsDevelopment  bool
	RequestTimeout time.Duration
	// RateLimitRPS limits mutating requests per client IP; zero disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Routes builds the HTTP handler: /healthz plus the REST API at /api/v1.
func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(h.logger))
	r.Use(middleware.Recoverer(h.logger))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteAPIError(w, r, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, h.logger).WritesOnly())
		}

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", h.ListPages)
			r.Post("/", h.CreatePage)
			r.Get("/home", h.GetHomePage)
			r.Get("/shop", h.GetShopPage)
			r.Get("/check-slug", h.CheckPageSlug)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPage)
				r.Put("/", h.UpdatePage)
				r.Delete("/", h.DeletePage)
				r.Post("/publish", h.PublishPage)
				r.Post("/unpublish", h.UnpublishPage)
				r.Post("/schedule", h.SchedulePage)
				r.Post("/archive", h.ArchivePage)
				r.Post("/set-home", h.SetHomePage)
				r.Post("/set-shop", h.SetShopPage)
				r.Post("/unset-home", h.UnsetHomePage)
				r.Post("/unset-shop", h.UnsetShopPage)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Post("/", h.CreatePost)
			r.Get("/check-slug", h.CheckPostSlug)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPost)
				r.Put("/", h.UpdatePost)
				r.Delete("/", h.DeletePost)
				r.Post("/publish", h.PublishPost)
				r.Post("/unpublish", h.UnpublishPost)
				r.Post("/schedule", h.SchedulePost)
				r.Post("/archive", h.ArchivePost)
				r.Post("/unarchive", h.UnarchivePost)
				r.Get("/revisions", h.ListPostRevisions)
				r.Post("/revisions/{revisionId}/restore", h.RestorePostRevision)
			})
		})

		termRoutes(r, "/post-categories", newTermHandlers[model.Category](h, h.repos.Categories))
		termRoutes(r, "/post-tags", newTermHandlers[model.Tag](h, h.repos.Tags))

		r.Get("/post-settings", h.GetPostSettings)
		r.Put("/post-settings", h.UpdatePostSettings)

		r.Route("/public", func(r chi.Router) {
			r.Get("/pages/home", h.PublicHomePage)
			r.Get("/pages/shop", h.PublicShopPage)
			r.Get("/pages/{slug}", h.PublicPage)
			r.Get("/posts", h.PublicPosts)
			r.Get("/posts/{slug}", h.PublicPost)
		})

		if h.events != nil {
			r.Get("/events", h.ListEvents)
		}
		if h.scheduler != nil {
			r.Get("/scheduler/jobs", h.SchedulerJobs)
			r.Post("/scheduler/run", h.RunSweep)
		}
	})

	return r
}

func termRoutes[T any](r chi.Router, prefix string, t termHandlers[T]) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", t.List)
		r.Post("/", t.Create)
		r.Get("/check-slug", t.CheckSlug)
		r.Get("/{id}", t.Get)
		r.Put("/{id}", t.Update)
		r.Delete("/{id}", t.Delete)
	})
}
