// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/olegiv/blockcms/internal/slug"
)

// Queries runs statements against a pool or a transaction.
type Queries struct {
	db      sqlx.ExtContext
	dialect Dialect
}

// New returns Queries running directly on the pool.
func New(db *DB) *Queries {
	return &Queries{db: db.DB, dialect: db.Dialect}
}

// Dialect returns the SQL dialect in use.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

func (q *Queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.db, dest, q.db.Rebind(query), args...)
}

func (q *Queries) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.db, dest, q.db.Rebind(query), args...)
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) namedExec(ctx context.Context, query string, arg any) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, q.db, query, arg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insertReturningID runs a named INSERT ... RETURNING id.
func (q *Queries) insertReturningID(ctx context.Context, query string, arg any) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, q.db, query, arg)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var id int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, errors.New("insert returned no id")
	}
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

var slugTables = map[slug.Class]string{
	slug.ClassPage:     "pages",
	slug.ClassPost:     "posts",
	slug.ClassCategory: "categories",
	slug.ClassTag:      "tags",
}

// SlugExists reports whether slug is stored for class. It satisfies
// slug.Checker.
func (q *Queries) SlugExists(ctx context.Context, class slug.Class, s string) (bool, error) {
	table, ok := slugTables[class]
	if !ok {
		return false, fmt.Errorf("unknown slug class %q", class)
	}
	var n int
	if err := q.get(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE slug = ?", s); err != nil {
		return false, err
	}
	return n > 0, nil
}

// singletonLockKey identifies the advisory lock taken around singleton
// flag writes on PostgreSQL.
const singletonLockKey = 7_210_001

// LockSingletons serializes singleton page flag writes for the rest of the
// transaction. SQLite already holds the database write lock.
func (q *Queries) LockSingletons(ctx context.Context) error {
	if q.dialect != DialectPostgres {
		return nil
	}
	_, err := q.exec(ctx, "SELECT pg_advisory_xact_lock(?)", singletonLockKey)
	return err
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	// The cgo driver reports the same message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
