// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/blockcms/internal/model"
)

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content_json, p.legacy_html, p.author_id,
	p.cover_image_id, p.og_image_id, p.reading_time_minutes, p.canonical_url, p.featured,
	p.allow_index, p.allow_follow, p.custom_css, p.status, p.published_at, p.scheduled_at,
	p.created_at, p.updated_at`

type postRow struct {
	ID                 int64         `db:"id"`
	Title              string        `db:"title"`
	Slug               string        `db:"slug"`
	Excerpt            string        `db:"excerpt"`
	ContentJSON        string        `db:"content_json"`
	LegacyHTML         string        `db:"legacy_html"`
	AuthorID           sql.NullInt64 `db:"author_id"`
	CoverImageID       sql.NullInt64 `db:"cover_image_id"`
	OGImageID          sql.NullInt64 `db:"og_image_id"`
	ReadingTimeMinutes int           `db:"reading_time_minutes"`
	CanonicalURL       string        `db:"canonical_url"`
	Featured           bool          `db:"featured"`
	AllowIndex         bool          `db:"allow_index"`
	AllowFollow        bool          `db:"allow_follow"`
	CustomCSS          string        `db:"custom_css"`
	Status             string        `db:"status"`
	PublishedAt        NullTimestamp `db:"published_at"`
	ScheduledAt        NullTimestamp `db:"scheduled_at"`
	CreatedAt          Timestamp     `db:"created_at"`
	UpdatedAt          Timestamp     `db:"updated_at"`
}

func newPostRow(p model.Post) (postRow, error) {
	doc, err := encodeDocument(p.ContentJSON)
	if err != nil {
		return postRow{}, err
	}
	return postRow{
		ID:                 p.ID,
		Title:              p.Title,
		Slug:               p.Slug,
		Excerpt:            p.Excerpt,
		ContentJSON:        doc,
		LegacyHTML:         p.LegacyHTML,
		AuthorID:           nullInt(p.AuthorID),
		CoverImageID:       nullInt(p.CoverImageID),
		OGImageID:          nullInt(p.OGImageID),
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		CanonicalURL:       p.CanonicalURL,
		Featured:           p.Featured,
		AllowIndex:         p.AllowIndex,
		AllowFollow:        p.AllowFollow,
		CustomCSS:          p.CustomCSS,
		Status:             string(p.Status),
		PublishedAt:        NullTime(p.PublishedAt),
		ScheduledAt:        NullTime(p.ScheduledAt),
		CreatedAt:          Timestamp{p.CreatedAt},
		UpdatedAt:          Timestamp{p.UpdatedAt},
	}, nil
}

func (r postRow) toModel() (model.Post, error) {
	doc, err := decodeDocument(r.ContentJSON)
	if err != nil {
		return model.Post{}, fmt.Errorf("post %d: %w", r.ID, err)
	}
	return model.Post{
		ID:                 r.ID,
		Title:              r.Title,
		Slug:               r.Slug,
		Excerpt:            r.Excerpt,
		ContentJSON:        doc,
		LegacyHTML:         r.LegacyHTML,
		AuthorID:           intPtr(r.AuthorID),
		CoverImageID:       intPtr(r.CoverImageID),
		OGImageID:          intPtr(r.OGImageID),
		ReadingTimeMinutes: r.ReadingTimeMinutes,
		CanonicalURL:       r.CanonicalURL,
		Featured:           r.Featured,
		AllowIndex:         r.AllowIndex,
		AllowFollow:        r.AllowFollow,
		CustomCSS:          r.CustomCSS,
		Status:             model.Status(r.Status),
		PublishedAt:        r.PublishedAt.Ptr(),
		ScheduledAt:        r.ScheduledAt.Ptr(),
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
		Categories:         []model.Category{},
		Tags:               []model.Tag{},
	}, nil
}

func postsFromRows(rows []postRow) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (q *Queries) getPost(ctx context.Context, where string, args ...any) (model.Post, error) {
	var row postRow
	if err := q.get(ctx, &row, "SELECT "+postColumns+" FROM posts p WHERE "+where, args...); err != nil {
		return model.Post{}, err
	}
	p, err := row.toModel()
	if err != nil {
		return model.Post{}, err
	}
	posts := []model.Post{p}
	if err := q.loadPostTerms(ctx, posts); err != nil {
		return model.Post{}, err
	}
	return posts[0], nil
}

// GetPost returns the post with id including its categories and tags.
// It returns sql.ErrNoRows if absent.
func (q *Queries) GetPost(ctx context.Context, id int64) (model.Post, error) {
	return q.getPost(ctx, "p.id = ?", id)
}

// GetPostBySlug returns the post with slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	return q.getPost(ctx, "p.slug = ?", slug)
}

// PostFilter narrows ListPosts. Zero values do not filter.
type PostFilter struct {
	Status   model.Status
	Query    string
	Tag      string // slug or numeric id
	Category string // slug or numeric id
	AuthorID *int64
	Featured *bool
	// VisibleAt restricts the result to posts publicly visible at that time.
	VisibleAt *time.Time
	Sort      string
	Limit     int
	Offset    int
}

// Post list sort orders
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortTitle   = "title"
	SortUpdated = "updated"
)

var postSorts = map[string]string{
	SortNewest:  "COALESCE(p.published_at, p.created_at) DESC, p.id DESC",
	SortOldest:  "COALESCE(p.published_at, p.created_at) ASC, p.id ASC",
	SortTitle:   "LOWER(p.title) ASC, p.id ASC",
	SortUpdated: "p.updated_at DESC, p.id DESC",
}

// IsValidPostSort reports whether s is an accepted sort key.
func IsValidPostSort(s string) bool {
	_, ok := postSorts[s]
	return ok
}

func (f PostFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, string(f.Status))
	}
	if f.VisibleAt != nil {
		conds = append(conds, "p.status = ? AND p.published_at IS NOT NULL AND p.published_at <= ?")
		args = append(args, string(model.StatusPublished), FormatTime(*f.VisibleAt))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		conds = append(conds, "(LOWER(p.title) LIKE ? OR LOWER(p.excerpt) LIKE ?)")
		args = append(args, like, like)
	}
	if f.Tag != "" {
		col, val := termKey(f.Tag)
		conds = append(conds, "EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t."+col+" = ?)")
		args = append(args, val)
	}
	if f.Category != "" {
		col, val := termKey(f.Category)
		conds = append(conds, "EXISTS (SELECT 1 FROM post_categories pc JOIN categories c ON c.id = pc.category_id WHERE pc.post_id = p.id AND c."+col+" = ?)")
		args = append(args, val)
	}
	if f.AuthorID != nil {
		conds = append(conds, "p.author_id = ?")
		args = append(args, *f.AuthorID)
	}
	if f.Featured != nil {
		conds = append(conds, "p.featured = ?")
		args = append(args, *f.Featured)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func termKey(v string) (string, any) {
	if id, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "id", id
	}
	return "slug", v
}

// ListPosts returns one page of posts matching f and the total match count.
func (q *Queries) ListPosts(ctx context.Context, f PostFilter) ([]model.Post, int, error) {
	where, args := f.where()

	var total int
	if err := q.get(ctx, &total, "SELECT COUNT(*) FROM posts p"+where, args...); err != nil {
		return nil, 0, err
	}

	order, ok := postSorts[f.Sort]
	if !ok {
		order = postSorts[SortNewest]
	}
	query := "SELECT " + postColumns + " FROM posts p" + where + " ORDER BY " + order
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	var rows []postRow
	if err := q.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	posts, err := postsFromRows(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := q.loadPostTerms(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListDuePosts returns scheduled posts whose time is at or before now.
func (q *Queries) ListDuePosts(ctx context.Context, now time.Time) ([]model.Post, error) {
	var rows []postRow
	err := q.selectAll(ctx, &rows,
		"SELECT "+postColumns+" FROM posts p WHERE p.status = ? AND p.scheduled_at <= ? ORDER BY p.scheduled_at ASC, p.id ASC",
		string(model.StatusScheduled), FormatTime(now))
	if err != nil {
		return nil, err
	}
	return postsFromRows(rows)
}

// CreatePost inserts p and returns its id. Associations are written
// separately with SetPostCategories and SetPostTags.
func (q *Queries) CreatePost(ctx context.Context, p model.Post) (int64, error) {
	row, err := newPostRow(p)
	if err != nil {
		return 0, err
	}
	return q.insertReturningID(ctx, `INSERT INTO posts (
		title, slug, excerpt, content_json, legacy_html, author_id, cover_image_id, og_image_id,
		reading_time_minutes, canonical_url, featured, allow_index, allow_follow, custom_css,
		status, published_at, scheduled_at, created_at, updated_at
	) VALUES (
		:title, :slug, :excerpt, :content_json, :legacy_html, :author_id, :cover_image_id, :og_image_id,
		:reading_time_minutes, :canonical_url, :featured, :allow_index, :allow_follow, :custom_css,
		:status, :published_at, :scheduled_at, :created_at, :updated_at
	) RETURNING id`, row)
}

// UpdatePost writes every column of p.
func (q *Queries) UpdatePost(ctx context.Context, p model.Post) error {
	row, err := newPostRow(p)
	if err != nil {
		return err
	}
	_, err = q.namedExec(ctx, `UPDATE posts SET
		title = :title, slug = :slug, excerpt = :excerpt, content_json = :content_json,
		legacy_html = :legacy_html, author_id = :author_id, cover_image_id = :cover_image_id,
		og_image_id = :og_image_id, reading_time_minutes = :reading_time_minutes,
		canonical_url = :canonical_url, featured = :featured, allow_index = :allow_index,
		allow_follow = :allow_follow, custom_css = :custom_css, status = :status,
		published_at = :published_at, scheduled_at = :scheduled_at, updated_at = :updated_at
	WHERE id = :id`, row)
	return err
}

// DeletePost physically removes the post row and reports whether it existed.
func (q *Queries) DeletePost(ctx context.Context, id int64) (bool, error) {
	if _, err := q.exec(ctx, "DELETE FROM post_categories WHERE post_id = ?", id); err != nil {
		return false, err
	}
	if _, err := q.exec(ctx, "DELETE FROM post_tags WHERE post_id = ?", id); err != nil {
		return false, err
	}
	if _, err := q.exec(ctx, "DELETE FROM post_revisions WHERE post_id = ?", id); err != nil {
		return false, err
	}
	n, err := q.exec(ctx, "DELETE FROM posts WHERE id = ?", id)
	return n > 0, err
}

// SetPostCategories replaces the post's category associations.
func (q *Queries) SetPostCategories(ctx context.Context, postID int64, ids []int64) error {
	return q.replaceJoin(ctx, "post_categories", "category_id", postID, ids)
}

// SetPostTags replaces the post's tag associations.
func (q *Queries) SetPostTags(ctx context.Context, postID int64, ids []int64) error {
	return q.replaceJoin(ctx, "post_tags", "tag_id", postID, ids)
}

func (q *Queries) replaceJoin(ctx context.Context, table, col string, postID int64, ids []int64) error {
	if _, err := q.exec(ctx, "DELETE FROM "+table+" WHERE post_id = ?", postID); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := q.exec(ctx, "INSERT INTO "+table+" (post_id, "+col+") VALUES (?, ?)", postID, id); err != nil {
			return fmt.Errorf("inserting %s: %w", table, err)
		}
	}
	return nil
}

type postCategoryRow struct {
	PostID int64 `db:"post_id"`
	categoryRow
}

type postTagRow struct {
	PostID int64 `db:"post_id"`
	tagRow
}

// loadPostTerms fills Categories and Tags for posts with two batch queries.
func (q *Queries) loadPostTerms(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		index[p.ID] = i
	}

	query, args, err := sqlx.In(`SELECT pc.post_id, `+categoryColumns("c")+`
		FROM post_categories pc JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id IN (?) ORDER BY c.name, c.id`, ids)
	if err != nil {
		return err
	}
	var cats []postCategoryRow
	if err := q.selectAll(ctx, &cats, query, args...); err != nil {
		return fmt.Errorf("loading post categories: %w", err)
	}
	for _, r := range cats {
		i := index[r.PostID]
		posts[i].Categories = append(posts[i].Categories, r.categoryRow.toModel())
	}

	query, args, err = sqlx.In(`SELECT pt.post_id, `+tagColumns("t")+`
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (?) ORDER BY t.name, t.id`, ids)
	if err != nil {
		return err
	}
	var tags []postTagRow
	if err := q.selectAll(ctx, &tags, query, args...); err != nil {
		return fmt.Errorf("loading post tags: %w", err)
	}
	for _, r := range tags {
		i := index[r.PostID]
		posts[i].Tags = append(posts[i].Tags, r.tagRow.toModel())
	}
	return nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
