// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusIsValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.IsValid() {
			t.Errorf("%q.IsValid() = false", s)
		}
	}
	for _, s := range []Status{"", "deleted", "Published"} {
		if s.IsValid() {
			t.Errorf("%q.IsValid() = true", s)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	doc := EmptyDocument()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) != `{"version":1,"blocks":[]}` {
		t.Errorf("EmptyDocument() JSON = %s", raw)
	}
}

func TestIsKnownBlockType(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"hero", true},
		{"faq", true},
		{"richText", true},
		{"mysteryBlock", false},
		{"Hero", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsKnownBlockType(tt.typ); got != tt.want {
			t.Errorf("IsKnownBlockType(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestPostLifecycleRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var p Post
	p.SetLifecycle(Lifecycle{Status: StatusScheduled, ScheduledAt: &at})

	l := p.Lifecycle()
	if l.Status != StatusScheduled || l.ScheduledAt == nil || !l.ScheduledAt.Equal(at) {
		t.Errorf("Lifecycle() = %+v", l)
	}
	if l.PublishedAt != nil {
		t.Errorf("PublishedAt = %v, want nil", l.PublishedAt)
	}
}

func TestSnapshotOf(t *testing.T) {
	at := time.Now().UTC()
	p := Post{
		ID:          7,
		Title:       "Hello",
		Slug:        "hello",
		Excerpt:     "intro",
		ContentJSON: EmptyDocument(),
		LegacyHTML:  "<p>x</p>",
		Status:      StatusPublished,
		PublishedAt: &at,
		Featured:    true,
		AllowIndex:  true,
		CustomCSS:   "body{}",
	}

	s := SnapshotOf(p)
	if s.Title != "Hello" || s.Slug != "hello" || s.Excerpt != "intro" || s.LegacyHTML != "<p>x</p>" {
		t.Errorf("SnapshotOf() = %+v", s)
	}
	if s.Status != StatusPublished || s.PublishedAt != &at {
		t.Errorf("status fields not captured: %+v", s)
	}
	if !s.Featured || !s.AllowIndex || s.AllowFollow {
		t.Errorf("flags not captured: %+v", s)
	}
}
