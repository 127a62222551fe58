// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/publishing"
	"github.com/olegiv/blockcms/internal/slug"
	"github.com/olegiv/blockcms/internal/store"
)

// PostInput is the payload for creating a post. AllowIndex and AllowFollow
// default to true. ReadingTimeMinutes is computed when omitted.
type PostInput struct {
	Title              string          `json:"title"`
	Slug               string          `json:"slug"`
	Excerpt            string          `json:"excerpt"`
	ContentJSON        json.RawMessage `json:"contentJson"`
	LegacyHTML         string          `json:"legacyHtml"`
	AuthorID           *int64          `json:"authorId"`
	CoverImageID       *int64          `json:"coverImageId"`
	OGImageID          *int64          `json:"ogImageId"`
	ReadingTimeMinutes *int            `json:"readingTimeMinutes"`
	CanonicalURL       string          `json:"canonicalUrl"`
	Featured           bool            `json:"featured"`
	AllowIndex         *bool           `json:"allowIndex"`
	AllowFollow        *bool           `json:"allowFollow"`
	CustomCSS          string          `json:"customCss"`
	Status             model.Status    `json:"status"`
	PublishedAt        *time.Time      `json:"publishedAt"`
	ScheduledAt        *time.Time      `json:"scheduledAt"`
	CategoryIDs        []int64         `json:"categoryIds"`
	TagIDs             []int64         `json:"tagIds"`
}

// Validate implements validation.Validatable.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Slug, append([]validation.Rule{validation.Required}, slugRules...)...),
		validation.Field(&in.Excerpt, validation.Length(0, 1000)),
		validation.Field(&in.ReadingTimeMinutes, validation.Min(0)),
		validation.Field(&in.CanonicalURL, is.URL),
		validation.Field(&in.Status, statusRule),
	)
}

// PostPatch is a partial post update.
type PostPatch struct {
	Title              *string             `json:"title"`
	Slug               *string             `json:"slug"`
	Excerpt            *string             `json:"excerpt"`
	ContentJSON        json.RawMessage     `json:"contentJson"`
	LegacyHTML         *string             `json:"legacyHtml"`
	AuthorID           Optional[int64]     `json:"authorId"`
	CoverImageID       Optional[int64]     `json:"coverImageId"`
	OGImageID          Optional[int64]     `json:"ogImageId"`
	ReadingTimeMinutes *int                `json:"readingTimeMinutes"`
	CanonicalURL       *string             `json:"canonicalUrl"`
	Featured           *bool               `json:"featured"`
	AllowIndex         *bool               `json:"allowIndex"`
	AllowFollow        *bool               `json:"allowFollow"`
	CustomCSS          *string             `json:"customCss"`
	Status             *model.Status       `json:"status"`
	PublishedAt        Optional[time.Time] `json:"publishedAt"`
	ScheduledAt        Optional[time.Time] `json:"scheduledAt"`
	CategoryIDs        *[]int64            `json:"categoryIds"`
	TagIDs             *[]int64            `json:"tagIds"`
}

// Validate implements validation.Validatable.
func (p PostPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.Slug, append([]validation.Rule{validation.NilOrNotEmpty}, slugRules...)...),
		validation.Field(&p.Excerpt, validation.Length(0, 1000)),
		validation.Field(&p.ReadingTimeMinutes, validation.Min(0)),
		validation.Field(&p.CanonicalURL, is.URL),
		validation.Field(&p.Status, statusRule),
	)
}

// ListOptions narrows and pages List. Page is 1-based; PageSize defaults to
// the postsPerPage setting.
type ListOptions struct {
	Status   model.Status
	Query    string
	Tag      string
	Category string
	AuthorID *int64
	Featured *bool
	Sort     string
	Page     int
	PageSize int
}

// MaxPageSize caps ListOptions.PageSize.
const MaxPageSize = 100

// MaxPage caps ListOptions.Page so the row offset stays well inside int64.
const MaxPage = 1_000_000

// PostList is one page of a post listing.
type PostList struct {
	Posts    []model.Post
	Total    int
	Page     int
	PageSize int
}

// PostRepository persists posts, their taxonomy links and revisions.
type PostRepository struct {
	db        *store.DB
	machine   *publishing.Machine
	sanitizer *content.Sanitizer
	revisions RevisionRecorder
	cache     Invalidator
	logger    *slog.Logger
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(d Deps) *PostRepository {
	d = d.withDefaults()
	return &PostRepository{
		db:        d.DB,
		machine:   d.Machine,
		sanitizer: d.Sanitizer,
		revisions: d.Revisions,
		cache:     d.Cache,
		logger:    d.Logger,
	}
}

// Create validates and stores a new post. A post created as published is
// snapshotted.
func (r *PostRepository) Create(ctx context.Context, in PostInput) (model.Post, error) {
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title)
	}
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	if err := apperr.FromValidation(in.Validate()); err != nil {
		return model.Post{}, err
	}

	doc, err := parseContent(r.logger, in.ContentJSON, slug.ClassPost, in.Slug)
	if err != nil {
		return model.Post{}, err
	}

	now := r.machine.Now()
	post := model.Post{
		Title:        in.Title,
		Slug:         in.Slug,
		Excerpt:      in.Excerpt,
		ContentJSON:  doc,
		LegacyHTML:   r.sanitizer.Sanitize(in.LegacyHTML),
		AuthorID:     in.AuthorID,
		CoverImageID: in.CoverImageID,
		OGImageID:    in.OGImageID,
		CanonicalURL: in.CanonicalURL,
		Featured:     in.Featured,
		AllowIndex:   in.AllowIndex == nil || *in.AllowIndex,
		AllowFollow:  in.AllowFollow == nil || *in.AllowFollow,
		CustomCSS:    content.SanitizeCSS(in.CustomCSS),
		Status:       in.Status,
		PublishedAt:  utcPtr(in.PublishedAt),
		ScheduledAt:  utcPtr(in.ScheduledAt),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.ReadingTimeMinutes != nil {
		post.ReadingTimeMinutes = *in.ReadingTimeMinutes
	} else {
		post.ReadingTimeMinutes = content.ReadingTime(post.ContentJSON, post.LegacyHTML)
	}
	if err := r.machine.ValidateWrite(nil, post.Lifecycle()); err != nil {
		return model.Post{}, err
	}

	err = r.db.WithTx(ctx, func(q *store.Queries) error {
		if err := slug.NewResolver(q).AssertAvailable(ctx, slug.ClassPost, post.Slug); err != nil {
			return err
		}
		id, err := q.CreatePost(ctx, post)
		if err != nil {
			return slugConflict(err, slug.ClassPost, post.Slug)
		}
		if err := writeTerms(ctx, q, id, &in.CategoryIDs, &in.TagIDs); err != nil {
			return err
		}
		post, err = q.GetPost(ctx, id)
		return err
	})
	if err != nil {
		return model.Post{}, err
	}

	if post.Status == model.StatusPublished {
		r.snapshot(ctx, post.ID, post, nil)
	}
	r.cache.Invalidate(ctx)
	r.logger.Info("post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	return post, nil
}

// Update applies patch to post id. An update that moves the post into
// published records a revision of the previous state.
func (r *PostRepository) Update(ctx context.Context, id int64, patch PostPatch) (model.Post, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return model.Post{}, err
	}

	var doc *model.Document
	if patch.ContentJSON != nil {
		d, err := parseContent(r.logger, patch.ContentJSON, slug.ClassPost, derefOr(patch.Slug, ""))
		if err != nil {
			return model.Post{}, err
		}
		doc = &d
	}

	var before, post model.Post
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetPost(ctx, id)
		if err != nil {
			return notFound(err, "post", id)
		}
		before = cur
		prev := cur.Lifecycle()
		next := cur

		if patch.Slug != nil {
			if err := slug.NewResolver(q).AssertAvailableFor(ctx, slug.ClassPost, *patch.Slug, cur.Slug); err != nil {
				return err
			}
			next.Slug = *patch.Slug
		}
		set(&next.Title, patch.Title)
		set(&next.Excerpt, patch.Excerpt)
		if doc != nil {
			next.ContentJSON = *doc
		}
		if patch.LegacyHTML != nil {
			next.LegacyHTML = r.sanitizer.Sanitize(*patch.LegacyHTML)
		}
		patch.AuthorID.apply(&next.AuthorID)
		patch.CoverImageID.apply(&next.CoverImageID)
		patch.OGImageID.apply(&next.OGImageID)
		set(&next.CanonicalURL, patch.CanonicalURL)
		set(&next.Featured, patch.Featured)
		set(&next.AllowIndex, patch.AllowIndex)
		set(&next.AllowFollow, patch.AllowFollow)
		if patch.CustomCSS != nil {
			next.CustomCSS = content.SanitizeCSS(*patch.CustomCSS)
		}
		set(&next.Status, patch.Status)
		patch.PublishedAt.apply(&next.PublishedAt)
		patch.ScheduledAt.apply(&next.ScheduledAt)
		next.PublishedAt = utcPtr(next.PublishedAt)
		next.ScheduledAt = utcPtr(next.ScheduledAt)

		switch {
		case patch.ReadingTimeMinutes != nil:
			next.ReadingTimeMinutes = *patch.ReadingTimeMinutes
		case doc != nil || patch.LegacyHTML != nil:
			next.ReadingTimeMinutes = content.ReadingTime(next.ContentJSON, next.LegacyHTML)
		}

		if err := r.machine.ValidateWrite(&prev, next.Lifecycle()); err != nil {
			return err
		}

		next.UpdatedAt = r.machine.Now()
		if err := q.UpdatePost(ctx, next); err != nil {
			return slugConflict(err, slug.ClassPost, next.Slug)
		}
		if err := writeTerms(ctx, q, id, patch.CategoryIDs, patch.TagIDs); err != nil {
			return err
		}
		post, err = q.GetPost(ctx, id)
		return err
	})
	if err != nil {
		return model.Post{}, err
	}

	if post.Status == model.StatusPublished && before.Status != model.StatusPublished {
		r.snapshot(ctx, id, before, nil)
	}
	r.cache.Invalidate(ctx)
	return post, nil
}

// Publish moves a post to published and snapshots its pre-transition
// state, attributed to userID. Publishing an already published post
// leaves it unchanged but still records a revision.
func (r *PostRepository) Publish(ctx context.Context, id int64, userID *int64) (model.Post, error) {
	before, post, err := r.transition(ctx, id, "published", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Publish(l), nil
	})
	if err != nil {
		return model.Post{}, err
	}
	r.snapshot(ctx, id, before, userID)
	return post, nil
}

// Unpublish moves a post back to draft. Its scheduled time is kept.
func (r *PostRepository) Unpublish(ctx context.Context, id int64) (model.Post, error) {
	_, post, err := r.transition(ctx, id, "unpublished", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Unpublish(l, false), nil
	})
	return post, err
}

// Schedule schedules a post for publication at at.
func (r *PostRepository) Schedule(ctx context.Context, id int64, at time.Time) (model.Post, error) {
	_, post, err := r.transition(ctx, id, "scheduled", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Schedule(l, at)
	})
	return post, err
}

// Archive moves a post to archived.
func (r *PostRepository) Archive(ctx context.Context, id int64) (model.Post, error) {
	_, post, err := r.transition(ctx, id, "archived", func(l model.Lifecycle) (model.Lifecycle, error) {
		return r.machine.Archive(l), nil
	})
	return post, err
}

// Remove is the API delete: the post is archived, not deleted.
func (r *PostRepository) Remove(ctx context.Context, id int64) (model.Post, error) {
	return r.Archive(ctx, id)
}

// Unarchive reopens an archived post as a draft.
func (r *PostRepository) Unarchive(ctx context.Context, id int64) (model.Post, error) {
	_, post, err := r.transition(ctx, id, "unarchived", r.machine.Unarchive)
	return post, err
}

func (r *PostRepository) transition(ctx context.Context, id int64, action string,
	fn func(model.Lifecycle) (model.Lifecycle, error)) (before, after model.Post, err error) {
	err = r.db.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetPost(ctx, id)
		if err != nil {
			return notFound(err, "post", id)
		}
		before = cur
		next, err := fn(cur.Lifecycle())
		if err != nil {
			return err
		}
		if err := publishing.Validate(next); err != nil {
			return err
		}
		cur.SetLifecycle(next)
		cur.UpdatedAt = r.machine.Now()
		if err := q.UpdatePost(ctx, cur); err != nil {
			return err
		}
		after = cur
		return nil
	})
	if err != nil {
		return model.Post{}, model.Post{}, err
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("post "+action, "post_id", id, "slug", after.Slug)
	return before, after, nil
}

// Purge physically deletes a post with its links and revisions.
func (r *PostRepository) Purge(ctx context.Context, id int64) error {
	var ok bool
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		var err error
		ok, err = q.DeletePost(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("post", id)
	}
	r.cache.Invalidate(ctx)
	r.logger.Info("post purged", "post_id", id)
	return nil
}

// FindByID returns a post with its categories and tags.
func (r *PostRepository) FindByID(ctx context.Context, id int64) (model.Post, error) {
	p, err := store.New(r.db).GetPost(ctx, id)
	return p, notFound(err, "post", id)
}

// FindBySlug returns the post with slug s.
func (r *PostRepository) FindBySlug(ctx context.Context, s string) (model.Post, error) {
	p, err := store.New(r.db).GetPostBySlug(ctx, s)
	return p, notFoundBy(err, "post", s)
}

// List returns one page of posts matching opts.
func (r *PostRepository) List(ctx context.Context, opts ListOptions) (PostList, error) {
	return r.list(ctx, opts, nil)
}

// ListVisible is List restricted to publicly visible posts.
func (r *PostRepository) ListVisible(ctx context.Context, opts ListOptions) (PostList, error) {
	now := r.machine.Now()
	opts.Status = ""
	return r.list(ctx, opts, &now)
}

func (r *PostRepository) list(ctx context.Context, opts ListOptions, visibleAt *time.Time) (PostList, error) {
	if opts.Status != "" && !opts.Status.IsValid() {
		return PostList{}, apperr.Invalid("status", fmt.Sprintf("unknown status %q", opts.Status))
	}
	if opts.Sort != "" && !store.IsValidPostSort(opts.Sort) {
		return PostList{}, apperr.Invalid("sort", fmt.Sprintf("unknown sort %q", opts.Sort))
	}

	q := store.New(r.db)
	if opts.PageSize <= 0 {
		settings, err := loadSettings(ctx, q)
		if err != nil {
			return PostList{}, err
		}
		opts.PageSize = settings.PostsPerPage
	}
	opts.PageSize = min(opts.PageSize, MaxPageSize)
	opts.Page = min(max(opts.Page, 1), MaxPage)

	posts, total, err := q.ListPosts(ctx, store.PostFilter{
		Status:    opts.Status,
		Query:     opts.Query,
		Tag:       opts.Tag,
		Category:  opts.Category,
		AuthorID:  opts.AuthorID,
		Featured:  opts.Featured,
		VisibleAt: visibleAt,
		Sort:      opts.Sort,
		Limit:     opts.PageSize,
		Offset:    (opts.Page - 1) * opts.PageSize,
	})
	if err != nil {
		return PostList{}, err
	}
	return PostList{Posts: posts, Total: total, Page: opts.Page, PageSize: opts.PageSize}, nil
}

// CheckSlug reports whether s is free for a post.
func (r *PostRepository) CheckSlug(ctx context.Context, s string, excludeID int64) (bool, error) {
	return checkSlugFor(ctx, store.New(r.db), slug.ClassPost, s, excludeID,
		func(q *store.Queries, id int64) (string, error) {
			p, err := q.GetPost(ctx, id)
			return p.Slug, err
		})
}

func (r *PostRepository) snapshot(ctx context.Context, id int64, post model.Post, userID *int64) {
	r.revisions.Snapshot(context.WithoutCancel(ctx), id, post, userID)
}

// writeTerms replaces the post's taxonomy links for each list that is
// non-nil. Unknown ids are rejected.
func writeTerms(ctx context.Context, q *store.Queries, postID int64, categoryIDs, tagIDs *[]int64) error {
	if categoryIDs != nil {
		ids := uniqueIDs(*categoryIDs)
		n, err := q.CountCategories(ctx, ids)
		if err != nil {
			return err
		}
		if n != len(ids) {
			return apperr.Invalid("categoryIds", "categoryIds references an unknown category")
		}
		if err := q.SetPostCategories(ctx, postID, ids); err != nil {
			return err
		}
	}
	if tagIDs != nil {
		ids := uniqueIDs(*tagIDs)
		n, err := q.CountTags(ctx, ids)
		if err != nil {
			return err
		}
		if n != len(ids) {
			return apperr.Invalid("tagIds", "tagIds references an unknown tag")
		}
		if err := q.SetPostTags(ctx, postID, ids); err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
