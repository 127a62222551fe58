// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/blockcms/internal/model"
)

type categoryRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	CreatedAt   Timestamp `db:"created_at"`
	UpdatedAt   Timestamp `db:"updated_at"`
}

func (r categoryRow) toModel() model.Category {
	return model.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func categoryColumns(alias string) string {
	return alias + ".id, " + alias + ".name, " + alias + ".slug, " + alias + ".description, " +
		alias + ".created_at, " + alias + ".updated_at"
}

type tagRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt Timestamp `db:"created_at"`
	UpdatedAt Timestamp `db:"updated_at"`
}

func (r tagRow) toModel() model.Tag {
	return model.Tag{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func tagColumns(alias string) string {
	return alias + ".id, " + alias + ".name, " + alias + ".slug, " + alias + ".created_at, " + alias + ".updated_at"
}

// GetCategory returns the category with id. It returns sql.ErrNoRows if absent.
func (q *Queries) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	var row categoryRow
	if err := q.get(ctx, &row, "SELECT "+categoryColumns("c")+" FROM categories c WHERE c.id = ?", id); err != nil {
		return model.Category{}, err
	}
	return row.toModel(), nil
}

// ListCategories returns all categories ordered by name.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	if err := q.selectAll(ctx, &rows, "SELECT "+categoryColumns("c")+" FROM categories c ORDER BY c.name, c.id"); err != nil {
		return nil, err
	}
	out := make([]model.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CreateCategory inserts c and returns its id.
func (q *Queries) CreateCategory(ctx context.Context, c model.Category) (int64, error) {
	return q.insertReturningID(ctx, `INSERT INTO categories (name, slug, description, created_at, updated_at)
		VALUES (:name, :slug, :description, :created_at, :updated_at) RETURNING id`, categoryRow{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   Timestamp{c.CreatedAt},
		UpdatedAt:   Timestamp{c.UpdatedAt},
	})
}

// UpdateCategory writes name, slug, description and updated_at.
func (q *Queries) UpdateCategory(ctx context.Context, c model.Category) error {
	_, err := q.exec(ctx, "UPDATE categories SET name = ?, slug = ?, description = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Slug, c.Description, FormatTime(c.UpdatedAt), c.ID)
	return err
}

// DeleteCategory detaches the category from all posts and removes it.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	if _, err := q.exec(ctx, "DELETE FROM post_categories WHERE category_id = ?", id); err != nil {
		return false, err
	}
	n, err := q.exec(ctx, "DELETE FROM categories WHERE id = ?", id)
	return n > 0, err
}

// CountCategories counts how many of ids exist.
func (q *Queries) CountCategories(ctx context.Context, ids []int64) (int, error) {
	return q.countIDs(ctx, "categories", ids)
}

// GetTag returns the tag with id. It returns sql.ErrNoRows if absent.
func (q *Queries) GetTag(ctx context.Context, id int64) (model.Tag, error) {
	var row tagRow
	if err := q.get(ctx, &row, "SELECT "+tagColumns("t")+" FROM tags t WHERE t.id = ?", id); err != nil {
		return model.Tag{}, err
	}
	return row.toModel(), nil
}

// ListTags returns all tags ordered by name.
func (q *Queries) ListTags(ctx context.Context) ([]model.Tag, error) {
	var rows []tagRow
	if err := q.selectAll(ctx, &rows, "SELECT "+tagColumns("t")+" FROM tags t ORDER BY t.name, t.id"); err != nil {
		return nil, err
	}
	out := make([]model.Tag, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CreateTag inserts t and returns its id.
func (q *Queries) CreateTag(ctx context.Context, t model.Tag) (int64, error) {
	return q.insertReturningID(ctx, `INSERT INTO tags (name, slug, created_at, updated_at)
		VALUES (:name, :slug, :created_at, :updated_at) RETURNING id`, tagRow{
		Name:      t.Name,
		Slug:      t.Slug,
		CreatedAt: Timestamp{t.CreatedAt},
		UpdatedAt: Timestamp{t.UpdatedAt},
	})
}

// UpdateTag writes name, slug and updated_at.
func (q *Queries) UpdateTag(ctx context.Context, t model.Tag) error {
	_, err := q.exec(ctx, "UPDATE tags SET name = ?, slug = ?, updated_at = ? WHERE id = ?",
		t.Name, t.Slug, FormatTime(t.UpdatedAt), t.ID)
	return err
}

// DeleteTag detaches the tag from all posts and removes it.
func (q *Queries) DeleteTag(ctx context.Context, id int64) (bool, error) {
	if _, err := q.exec(ctx, "DELETE FROM post_tags WHERE tag_id = ?", id); err != nil {
		return false, err
	}
	n, err := q.exec(ctx, "DELETE FROM tags WHERE id = ?", id)
	return n > 0, err
}

// CountTags counts how many of ids exist.
func (q *Queries) CountTags(ctx context.Context, ids []int64) (int, error) {
	return q.countIDs(ctx, "tags", ids)
}

func (q *Queries) countIDs(ctx context.Context, table string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("SELECT COUNT(*) FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return 0, err
	}
	var n int
	err = q.get(ctx, &n, query, args...)
	return n, err
}
