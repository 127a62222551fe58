// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package revision

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db := store.Wrap(sqlx.NewDb(mockDB, "sqlmock"), store.DialectSQLite)
	s := NewStore(db, logger)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, mock, &buf
}

func TestSnapshotSwallowsInsertError(t *testing.T) {
	s, mock, buf := newMockStore(t)

	mock.ExpectQuery("INSERT INTO post_revisions").
		WillReturnError(errors.New("disk I/O error"))

	assert.NotPanics(t, func() {
		s.Snapshot(context.Background(), 3, model.Post{ID: 3, Title: "Hello"}, nil)
	})

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), "failed to record post revision")
	assert.Contains(t, buf.String(), "post_id=3")
	assert.Contains(t, buf.String(), "disk I/O error")
}

func TestSnapshotWritesRow(t *testing.T) {
	s, mock, buf := newMockStore(t)

	user := int64(9)
	mock.ExpectQuery("INSERT INTO post_revisions").
		WithArgs(int64(3), sqlmock.AnyArg(), int64(9), "2026-03-01T12:00:00.000000Z").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	s.Snapshot(context.Background(), 3, model.Post{ID: 3, Title: "Hello"}, &user)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.NotContains(t, buf.String(), "failed")
	assert.Contains(t, buf.String(), "revision_id=11")
}

func TestSnapshotAgainstSQLite(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "revisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := model.Post{
		Title:       "First",
		Slug:        "first",
		ContentJSON: model.EmptyDocument(),
		Status:      model.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := store.New(db).CreatePost(ctx, post)
	require.NoError(t, err)
	post.ID = id

	s := NewStore(db, slog.New(slog.DiscardHandler))
	tick := now
	s.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	s.Snapshot(ctx, id, post, nil)
	post.Title = "Second"
	s.Snapshot(ctx, id, post, nil)

	q := store.New(db)
	revs, err := q.ListRevisions(ctx, id)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "First", revs[0].Snapshot.Title)
	assert.Equal(t, "Second", revs[1].Snapshot.Title)
	assert.Nil(t, revs[0].CreatedByUserID)

	got, err := q.GetRevision(ctx, id, revs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Snapshot.Slug)
}
