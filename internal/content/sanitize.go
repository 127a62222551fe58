// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"bytes"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Sanitizer cleans untrusted HTML for the legacy rich-text fields.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a Sanitizer using the UGC policy extended with the
// markup produced by the rich-text editor.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	p.AllowAttrs("class").Globally()
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	// Keep anchors that lose all their attributes, e.g. <a onclick="...">.
	p.AllowNoAttrs().OnElements("a")
	return &Sanitizer{policy: p}
}

var defaultSanitizer = NewSanitizer()

// SanitizeHTML cleans s with the default policy.
func SanitizeHTML(s string) string {
	return defaultSanitizer.Sanitize(s)
}

// Sanitize strips script elements, inline event handlers and script URIs.
// Links pointing at a script URI are kept with their target replaced by "#".
func (s *Sanitizer) Sanitize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	out := s.policy.Sanitize(neutralizeScriptURLs(input))
	return strings.ReplaceAll(out, `="`+blockedURL+`"`, `="#"`)
}

// blockedURL replaces script URIs before the policy runs. The policy drops
// a bare "#" but keeps named fragments, so the swap to "#" happens after it.
const blockedURL = "#blocked-script-url"

var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"xlink:href": true,
}

// neutralizeScriptURLs rewrites URL attributes carrying an executable scheme
// to blockedURL. Tokens that need no change are copied byte for byte.
func neutralizeScriptURLs(input string) string {
	z := html.NewTokenizer(strings.NewReader(input))
	var out bytes.Buffer
	out.Grow(len(input))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return out.String()
			}
			// Let the policy deal with whatever the tokenizer could not read.
			return input
		}
		raw := append([]byte(nil), z.Raw()...)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		tok := z.Token()
		changed := false
		for i, a := range tok.Attr {
			if urlAttrs[a.Key] && isScriptURL(a.Val) {
				tok.Attr[i].Val = blockedURL
				changed = true
			}
		}
		if changed {
			out.WriteString(tok.String())
		} else {
			out.Write(raw)
		}
	}
}

func isScriptURL(v string) bool {
	// Browsers ignore whitespace and control characters inside the scheme.
	var b strings.Builder
	for _, r := range v {
		if r <= ' ' {
			continue
		}
		b.WriteRune(r)
		if b.Len() >= 16 {
			break
		}
	}
	s := strings.ToLower(b.String())
	return strings.HasPrefix(s, "javascript:") ||
		strings.HasPrefix(s, "vbscript:") ||
		strings.HasPrefix(s, "data:text/html")
}
