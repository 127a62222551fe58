// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/olegiv/blockcms/internal/model"
)

type revisionRow struct {
	ID              int64         `db:"id"`
	PostID          int64         `db:"post_id"`
	Snapshot        string        `db:"snapshot"`
	CreatedByUserID sql.NullInt64 `db:"created_by_user_id"`
	CreatedAt       Timestamp     `db:"created_at"`
}

func (r revisionRow) toModel() (model.Revision, error) {
	var snap model.RevisionSnapshot
	if err := json.Unmarshal([]byte(r.Snapshot), &snap); err != nil {
		return model.Revision{}, fmt.Errorf("revision %d: decoding snapshot: %w", r.ID, err)
	}
	if snap.ContentJSON.Blocks == nil {
		snap.ContentJSON.Blocks = []model.Block{}
	}
	return model.Revision{
		ID:              r.ID,
		PostID:          r.PostID,
		Snapshot:        snap,
		CreatedByUserID: intPtr(r.CreatedByUserID),
		CreatedAt:       r.CreatedAt.Time,
	}, nil
}

const revisionColumns = "id, post_id, snapshot, created_by_user_id, created_at"

// CreateRevision appends a revision and returns its id.
func (q *Queries) CreateRevision(ctx context.Context, r model.Revision) (int64, error) {
	snap, err := json.Marshal(r.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}
	return q.insertReturningID(ctx, `INSERT INTO post_revisions (post_id, snapshot, created_by_user_id, created_at)
		VALUES (:post_id, :snapshot, :created_by_user_id, :created_at) RETURNING id`, revisionRow{
		PostID:          r.PostID,
		Snapshot:        string(snap),
		CreatedByUserID: nullInt(r.CreatedByUserID),
		CreatedAt:       Timestamp{r.CreatedAt},
	})
}

// ListRevisions returns a post's revisions oldest first.
func (q *Queries) ListRevisions(ctx context.Context, postID int64) ([]model.Revision, error) {
	var rows []revisionRow
	err := q.selectAll(ctx, &rows,
		"SELECT "+revisionColumns+" FROM post_revisions WHERE post_id = ? ORDER BY created_at ASC, id ASC", postID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Revision, 0, len(rows))
	for _, r := range rows {
		rev, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}

// GetRevision returns one revision of a post. It returns sql.ErrNoRows if absent.
func (q *Queries) GetRevision(ctx context.Context, postID, id int64) (model.Revision, error) {
	var row revisionRow
	err := q.get(ctx, &row, "SELECT "+revisionColumns+" FROM post_revisions WHERE post_id = ? AND id = ?", postID, id)
	if err != nil {
		return model.Revision{}, err
	}
	return row.toModel()
}
