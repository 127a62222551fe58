// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/repository"
)

// PublishPostRequest is the optional body of a post publish call. UserID
// attributes the revision snapshot.
type PublishPostRequest struct {
	UserID *int64 `json:"userId"`
}

// parseListOptions reads the post list filters from the query string.
func parseListOptions(w http.ResponseWriter, r *http.Request) (repository.ListOptions, bool) {
	q := r.URL.Query()
	opts := repository.ListOptions{
		Status:   model.Status(strings.TrimSpace(q.Get("status"))),
		Query:    strings.TrimSpace(q.Get("q")),
		Tag:      strings.TrimSpace(q.Get("tag")),
		Category: strings.TrimSpace(q.Get("category")),
		Sort:     strings.TrimSpace(q.Get("sort")),
	}

	var ok bool
	if opts.AuthorID, ok = queryInt64(r, "authorId"); !ok {
		WriteBadRequest(w, r, "invalid authorId")
		return opts, false
	}
	if opts.Featured, ok = queryBool(r, "featured"); !ok {
		WriteBadRequest(w, r, "invalid featured")
		return opts, false
	}
	if opts.Page, ok = queryInt(r, "page"); !ok || opts.Page < 0 || opts.Page > repository.MaxPage {
		WriteBadRequest(w, r, "invalid page")
		return opts, false
	}
	if opts.PageSize, ok = queryInt(r, "pageSize"); !ok || opts.PageSize < 0 {
		WriteBadRequest(w, r, "invalid pageSize")
		return opts, false
	}
	return opts, true
}

func (h *Handler) writePostList(w http.ResponseWriter, r *http.Request, list repository.PostList, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	posts := list.Posts
	if posts == nil {
		posts = []model.Post{}
	}
	WriteSuccess(w, posts, newMeta(list.Total, list.Page, list.PageSize))
}

// ListPosts handles GET /api/v1/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}
	list, err := h.repos.Posts.List(r.Context(), opts)
	h.writePostList(w, r, list, err)
}

// GetPost handles GET /api/v1/posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	h.postByID(w, r, h.repos.Posts.FindByID)
}

// CheckPostSlug handles GET /api/v1/posts/check-slug
func (h *Handler) CheckPostSlug(w http.ResponseWriter, r *http.Request) {
	h.checkSlug(h.repos.Posts.CheckSlug)(w, r)
}

// CreatePost handles POST /api/v1/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in repository.PostInput
	if !decodeJSON(w, r, &in, false) {
		return
	}
	h.postResult(w, r, http.StatusCreated)(h.repos.Posts.Create(r.Context(), in))
}

// UpdatePost handles PUT /api/v1/posts/{id}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var patch repository.PostPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	h.postResult(w, r, http.StatusOK)(h.repos.Posts.Update(r.Context(), id, patch))
}

// DeletePost handles DELETE /api/v1/posts/{id}. The post is archived and
// returned; nothing is physically deleted.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.postByID(w, r, h.repos.Posts.Remove)
}

// PublishPost handles POST /api/v1/posts/{id}/publish
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req PublishPostRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	h.postResult(w, r, http.StatusOK)(h.repos.Posts.Publish(r.Context(), id, req.UserID))
}

// UnpublishPost handles POST /api/v1/posts/{id}/unpublish
func (h *Handler) UnpublishPost(w http.ResponseWriter, r *http.Request) {
	h.postByID(w, r, h.repos.Posts.Unpublish)
}

// SchedulePost handles POST /api/v1/posts/{id}/schedule
func (h *Handler) SchedulePost(w http.ResponseWriter, r *http.Request) {
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
	h.postResult(w, r, http.StatusOK)(h.repos.Posts.Schedule(r.Context(), id, at))
}

// ArchivePost handles POST /api/v1/posts/{id}/archive
func (h *Handler) ArchivePost(w http.ResponseWriter, r *http.Request) {
	h.postByID(w, r, h.repos.Posts.Archive)
}

// UnarchivePost handles POST /api/v1/posts/{id}/unarchive
func (h *Handler) UnarchivePost(w http.ResponseWriter, r *http.Request) {
	h.postByID(w, r, h.repos.Posts.Unarchive)
}

// ListPostRevisions handles GET /api/v1/posts/{id}/revisions
func (h *Handler) ListPostRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	revs, err := h.repos.Posts.Revisions(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if revs == nil {
		revs = []model.Revision{}
	}
	WriteSuccess(w, revs, nil)
}

// RestorePostRevision handles POST /api/v1/posts/{id}/revisions/{revisionId}/restore
func (h *Handler) RestorePostRevision(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	revisionID, ok := parseID(w, r, "revisionId")
	if !ok {
		return
	}
	h.postResult(w, r, http.StatusOK)(h.repos.Posts.RestoreRevision(r.Context(), id, revisionID))
}

func (h *Handler) postByID(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (model.Post, error)) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	h.postResult(w, r, http.StatusOK)(fn(r.Context(), id))
}

func (h *Handler) postResult(w http.ResponseWriter, r *http.Request, status int) func(model.Post, error) {
	return func(p model.Post, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, status, Response{Data: p})
	}
}
