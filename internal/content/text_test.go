// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"

	"github.com/olegiv/blockcms/internal/model"
)

func TestReadingTime(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	tests := []struct {
		name   string
		doc    model.Document
		legacy string
		want   int
	}{
		{"empty", model.EmptyDocument(), "", 0},
		{"short", docWithText(words(10)), "", 1},
		{"exactly one minute", docWithText(words(200)), "", 1},
		{"rounds up", docWithText(words(201)), "", 2},
		{"legacy html only", model.EmptyDocument(), "<p>" + words(450) + "</p>", 3},
		{"combined", docWithText(words(150)), "<p>" + words(150) + "</p>", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(tt.doc, tt.legacy); got != tt.want {
				t.Errorf("ReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlainTextSkipsURLsAndMarkup(t *testing.T) {
	doc := model.Document{Version: 1, Blocks: []model.Block{{
		ID:   "a",
		Type: "image",
		Data: map[string]any{
			"src":     "https://cdn.example.com/a.png",
			"caption": "<b>Sunset</b> &amp; sea",
			"items":   []any{"one", map[string]any{"q": "two"}},
		},
	}}}

	got := strings.Fields(PlainText(doc, ""))
	want := []string{"Sunset", "&", "sea", "one", "two"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("PlainText() fields = %v, want %v", got, want)
	}
}

func TestSanitizeCSS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"body { color: red; }", "body { color: red; }"},
		{"</style><script>alert(1)</script>", "/stylescriptalert(1)/script"},
		{"div { width: EXPRESSION(alert(1)); }", "div { width: alert(1)); }"},
		{"a { background: url(javascript:alert(1)) }", "a { background: url(alert(1)) }"},
	}

	for _, tt := range tests {
		if got := SanitizeCSS(tt.in); got != tt.want {
			t.Errorf("SanitizeCSS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func docWithText(text string) model.Document {
	return model.Document{Version: 1, Blocks: []model.Block{{
		ID:   "t",
		Type: "text",
		Data: map[string]any{"body": text},
	}}}
}
