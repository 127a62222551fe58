// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

// PageFlag names a singleton page column.
type PageFlag string

// Singleton page flags
const (
	FlagHome PageFlag = "is_home"
	FlagShop PageFlag = "is_shop"
)

func (f PageFlag) valid() bool {
	return f == FlagHome || f == FlagShop
}

const pageColumns = `id, title, slug, content_json, content, is_home, is_shop, status,
	published_at, scheduled_at, nav_order, meta_title, meta_description, created_at, updated_at`

type pageRow struct {
	ID              int64         `db:"id"`
	Title           string        `db:"title"`
	Slug            string        `db:"slug"`
	ContentJSON     string        `db:"content_json"`
	Content         string        `db:"content"`
	IsHome          bool          `db:"is_home"`
	IsShop          bool          `db:"is_shop"`
	Status          string        `db:"status"`
	PublishedAt     NullTimestamp `db:"published_at"`
	ScheduledAt     NullTimestamp `db:"scheduled_at"`
	NavOrder        int           `db:"nav_order"`
	MetaTitle       string        `db:"meta_title"`
	MetaDescription string        `db:"meta_description"`
	CreatedAt       Timestamp     `db:"created_at"`
	UpdatedAt       Timestamp     `db:"updated_at"`
}

func newPageRow(p model.Page) (pageRow, error) {
	doc, err := encodeDocument(p.ContentJSON)
	if err != nil {
		return pageRow{}, err
	}
	return pageRow{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		ContentJSON:     doc,
		Content:         p.Content,
		IsHome:          p.IsHome,
		IsShop:          p.IsShop,
		Status:          string(p.Status),
		PublishedAt:     NullTime(p.PublishedAt),
		ScheduledAt:     NullTime(p.ScheduledAt),
		NavOrder:        p.NavOrder,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		CreatedAt:       Timestamp{p.CreatedAt},
		UpdatedAt:       Timestamp{p.UpdatedAt},
	}, nil
}

func (r pageRow) toModel() (model.Page, error) {
	doc, err := decodeDocument(r.ContentJSON)
	if err != nil {
		return model.Page{}, fmt.Errorf("page %d: %w", r.ID, err)
	}
	return model.Page{
		ID:              r.ID,
		Title:           r.Title,
		Slug:            r.Slug,
		ContentJSON:     doc,
		Content:         r.Content,
		IsHome:          r.IsHome,
		IsShop:          r.IsShop,
		Status:          model.Status(r.Status),
		PublishedAt:     r.PublishedAt.Ptr(),
		ScheduledAt:     r.ScheduledAt.Ptr(),
		NavOrder:        r.NavOrder,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}, nil
}

func pagesFromRows(rows []pageRow) ([]model.Page, error) {
	pages := make([]model.Page, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (q *Queries) getPage(ctx context.Context, where string, args ...any) (model.Page, error) {
	var row pageRow
	if err := q.get(ctx, &row, "SELECT "+pageColumns+" FROM pages WHERE "+where, args...); err != nil {
		return model.Page{}, err
	}
	return row.toModel()
}

// GetPage returns the page with id. It returns sql.ErrNoRows if absent.
func (q *Queries) GetPage(ctx context.Context, id int64) (model.Page, error) {
	return q.getPage(ctx, "id = ?", id)
}

// GetPageBySlug returns the page with slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	return q.getPage(ctx, "slug = ?", slug)
}

// GetFlaggedPage returns the page holding a singleton flag.
func (q *Queries) GetFlaggedPage(ctx context.Context, flag PageFlag) (model.Page, error) {
	if !flag.valid() {
		return model.Page{}, fmt.Errorf("unknown page flag %q", flag)
	}
	return q.getPage(ctx, string(flag)+" = ?", true)
}

// ListPages returns all pages ordered by nav_order.
func (q *Queries) ListPages(ctx context.Context) ([]model.Page, error) {
	var rows []pageRow
	if err := q.selectAll(ctx, &rows, "SELECT "+pageColumns+" FROM pages ORDER BY nav_order ASC, id ASC"); err != nil {
		return nil, err
	}
	return pagesFromRows(rows)
}

// ListDuePages returns scheduled pages whose time is at or before now.
func (q *Queries) ListDuePages(ctx context.Context, now time.Time) ([]model.Page, error) {
	var rows []pageRow
	err := q.selectAll(ctx, &rows,
		"SELECT "+pageColumns+" FROM pages WHERE status = ? AND scheduled_at <= ? ORDER BY scheduled_at ASC, id ASC",
		string(model.StatusScheduled), FormatTime(now))
	if err != nil {
		return nil, err
	}
	return pagesFromRows(rows)
}

// CreatePage inserts p and returns its id.
func (q *Queries) CreatePage(ctx context.Context, p model.Page) (int64, error) {
	row, err := newPageRow(p)
	if err != nil {
		return 0, err
	}
	return q.insertReturningID(ctx, `INSERT INTO pages (
		title, slug, content_json, content, is_home, is_shop, status,
		published_at, scheduled_at, nav_order, meta_title, meta_description, created_at, updated_at
	) VALUES (
		:title, :slug, :content_json, :content, :is_home, :is_shop, :status,
		:published_at, :scheduled_at, :nav_order, :meta_title, :meta_description, :created_at, :updated_at
	) RETURNING id`, row)
}

// UpdatePage writes every column of p except the singleton flags, which
// change only through SetPageFlag and ClearPageFlag.
func (q *Queries) UpdatePage(ctx context.Context, p model.Page) error {
	row, err := newPageRow(p)
	if err != nil {
		return err
	}
	_, err = q.namedExec(ctx, `UPDATE pages SET
		title = :title, slug = :slug, content_json = :content_json, content = :content,
		status = :status, published_at = :published_at, scheduled_at = :scheduled_at,
		nav_order = :nav_order, meta_title = :meta_title, meta_description = :meta_description,
		updated_at = :updated_at
	WHERE id = :id`, row)
	return err
}

// DeletePage removes the page row and reports whether it existed.
func (q *Queries) DeletePage(ctx context.Context, id int64) (bool, error) {
	n, err := q.exec(ctx, "DELETE FROM pages WHERE id = ?", id)
	return n > 0, err
}

// ClearPageFlag unsets flag on whichever page holds it.
func (q *Queries) ClearPageFlag(ctx context.Context, flag PageFlag, now time.Time) error {
	if !flag.valid() {
		return fmt.Errorf("unknown page flag %q", flag)
	}
	col := string(flag)
	_, err := q.exec(ctx, "UPDATE pages SET "+col+" = ?, updated_at = ? WHERE "+col+" = ?",
		false, FormatTime(now), true)
	return err
}

// SetPageFlag sets flag on page id to value and reports whether the page exists.
func (q *Queries) SetPageFlag(ctx context.Context, flag PageFlag, id int64, value bool, now time.Time) (bool, error) {
	if !flag.valid() {
		return false, fmt.Errorf("unknown page flag %q", flag)
	}
	n, err := q.exec(ctx, "UPDATE pages SET "+string(flag)+" = ?, updated_at = ? WHERE id = ?",
		value, FormatTime(now), id)
	return n > 0, err
}

// CountFlaggedPages counts pages holding flag.
func (q *Queries) CountFlaggedPages(ctx context.Context, flag PageFlag) (int, error) {
	if !flag.valid() {
		return 0, fmt.Errorf("unknown page flag %q", flag)
	}
	var n int
	err := q.get(ctx, &n, "SELECT COUNT(*) FROM pages WHERE "+string(flag)+" = ?", true)
	return n, err
}

func encodeDocument(doc model.Document) (string, error) {
	if doc.Blocks == nil {
		doc.Blocks = []model.Block{}
	}
	if doc.Version == 0 {
		doc.Version = model.DocumentVersion
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding content document: %w", err)
	}
	return string(b), nil
}

func decodeDocument(s string) (model.Document, error) {
	if s == "" {
		return model.EmptyDocument(), nil
	}
	var doc model.Document
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return model.Document{}, fmt.Errorf("decoding content document: %w", err)
	}
	if doc.Blocks == nil {
		doc.Blocks = []model.Block{}
	}
	return doc, nil
}
