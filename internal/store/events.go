// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

type eventRow struct {
	ID        int64     `db:"id"`
	Level     string    `db:"level"`
	Category  string    `db:"category"`
	Message   string    `db:"message"`
	Metadata  string    `db:"metadata"`
	CreatedAt Timestamp `db:"created_at"`
}

// CreateEvent appends an event log entry.
func (q *Queries) CreateEvent(ctx context.Context, e model.Event) error {
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	_, err := q.exec(ctx, "INSERT INTO events (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		e.Level, e.Category, e.Message, e.Metadata, FormatTime(e.CreatedAt))
	return err
}

// ListEvents returns the newest events first.
func (q *Queries) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	var rows []eventRow
	err := q.selectAll(ctx, &rows,
		"SELECT id, level, category, message, metadata, created_at FROM events ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Event, len(rows))
	for i, r := range rows {
		out[i] = model.Event{
			ID:        r.ID,
			Level:     r.Level,
			Category:  r.Category,
			Message:   r.Message,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt.Time,
		}
	}
	return out, nil
}

// DeleteEventsBefore removes events created before cutoff.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return q.exec(ctx, "DELETE FROM events WHERE created_at < ?", FormatTime(cutoff))
}
