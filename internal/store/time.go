// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC text form of stored timestamps. Lexical
// order equals chronological order, so comparisons work in SQL on every
// backend.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. RFC 3339 input is accepted for rows
// written by hand.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

// Timestamp is a non-null time column.
type Timestamp struct {
	time.Time
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	return FormatTime(t.Time), nil
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
	v, ok, err := scanTime(src)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("scanning timestamp: unexpected NULL")
	}
	t.Time = v
	return nil
}

// NullTimestamp is a nullable time column.
type NullTimestamp struct {
	Time  time.Time
	Valid bool
}

// NullTime converts an optional time.
func NullTime(t *time.Time) NullTimestamp {
	if t == nil {
		return NullTimestamp{}
	}
	return NullTimestamp{Time: *t, Valid: true}
}

// Ptr returns the time or nil.
func (n NullTimestamp) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// Value implements driver.Valuer.
func (n NullTimestamp) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return FormatTime(n.Time), nil
}

// Scan implements sql.Scanner.
func (n *NullTimestamp) Scan(src any) error {
	v, ok, err := scanTime(src)
	if err != nil {
		return err
	}
	n.Time, n.Valid = v, ok
	return nil
}

func scanTime(src any) (time.Time, bool, error) {
	switch v := src.(type) {
	case nil:
		return time.Time{}, false, nil
	case string:
		t, err := ParseTime(v)
		return t, err == nil, err
	case []byte:
		t, err := ParseTime(string(v))
		return t, err == nil, err
	case time.Time:
		return v.UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("scanning timestamp: unsupported type %T", src)
	}
}
