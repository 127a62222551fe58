// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"html"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/blockcms/internal/model"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

var textPolicy = bluemonday.StrictPolicy()

// ReadingTime estimates whole minutes to read a document plus legacy HTML.
// Non-empty content always takes at least one minute.
func ReadingTime(doc model.Document, legacyHTML string) int {
	words := len(strings.Fields(PlainText(doc, legacyHTML)))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}

// PlainText extracts the human-readable text from block data and legacy HTML.
func PlainText(doc model.Document, legacyHTML string) string {
	var sb strings.Builder
	for _, b := range doc.Blocks {
		collectText(&sb, b.Data)
	}
	if legacyHTML != "" {
		sb.WriteString(html.UnescapeString(textPolicy.Sanitize(legacyHTML)))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func collectText(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		if looksLikeText(val) {
			sb.WriteString(html.UnescapeString(textPolicy.Sanitize(val)))
			sb.WriteByte(' ')
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectText(sb, val[k])
		}
	case []any:
		for _, item := range val {
			collectText(sb, item)
		}
	}
}

var nonTextValue = regexp.MustCompile(`^(https?://|/|#|[0-9a-f-]{32,36}$)`)

// looksLikeText skips URLs, anchors and ids that live next to prose in block data.
func looksLikeText(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !nonTextValue.MatchString(s)
}

var (
	cssStrip  = strings.NewReplacer("<", "", ">", "")
	cssDanger = regexp.MustCompile(`(?i)expression\s*\(|javascript:|behavior\s*:|-moz-binding`)
)

// SanitizeCSS removes sequences that could break out of a style element or
// execute script from custom post CSS.
func SanitizeCSS(css string) string {
	return strings.TrimSpace(cssDanger.ReplaceAllString(cssStrip.Replace(css), ""))
}
