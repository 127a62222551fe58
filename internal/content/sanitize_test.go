// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"
)

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "script removed",
			input: "<p>hi</p><script>alert(1)</script>",
			want:  "<p>hi</p>",
		},
		{
			name:  "event handler stripped anchor kept",
			input: `<a onclick="x()">go</a>`,
			want:  "<a>go</a>",
		},
		{
			name:  "javascript href rewritten",
			input: `<a href="javascript:alert(1)">go</a>`,
			want:  `<a href="#">go</a>`,
		},
		{
			name:  "mixed case scheme",
			input: `<a href="JaVaScRiPt:alert(1)">go</a>`,
			want:  `<a href="#">go</a>`,
		},
		{
			name:  "entity encoded scheme",
			input: `<a href="&#106;avascript:alert(1)">go</a>`,
			want:  `<a href="#">go</a>`,
		},
		{
			name:  "whitespace inside scheme",
			input: "<a href=\"java\tscript:alert(1)\">go</a>",
			want:  `<a href="#">go</a>`,
		},
		{
			name:  "vbscript href inside paragraph",
			input: `<p>see <a href="vbscript:msgbox(1)">this</a></p>`,
			want:  `<p>see <a href="#">this</a></p>`,
		},
		{
			name:  "fragment link kept",
			input: `<a href="#top">top</a>`,
			want:  `<a href="#top">top</a>`,
		},
		{
			name:  "relative link kept",
			input: `<a href="/about">about</a>`,
			want:  `<a href="/about">about</a>`,
		},
		{
			name:  "empty",
			input: "   ",
			want:  "",
		},
		{
			name:  "plain text",
			input: "hello world",
			want:  "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeHTML(tt.input); got != tt.want {
				t.Errorf("SanitizeHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeHTMLKeepsEditorMarkup(t *testing.T) {
	input := `<h2 class="lead">Title</h2><table><tr><td colspan="2">cell</td></tr></table>`
	got := SanitizeHTML(input)
	for _, want := range []string{`<h2 class="lead">`, `<td colspan="2">`, "cell"} {
		if !strings.Contains(got, want) {
			t.Errorf("SanitizeHTML() = %q, missing %q", got, want)
		}
	}
}

func TestSanitizeHTMLExternalLinksNoFollow(t *testing.T) {
	got := SanitizeHTML(`<a href="https://example.com">x</a>`)
	if !strings.Contains(got, `rel="nofollow"`) {
		t.Errorf("SanitizeHTML() = %q, want rel=nofollow on external link", got)
	}
}

func TestSanitizeHTMLStripsInlineHandlersEverywhere(t *testing.T) {
	got := SanitizeHTML(`<img src="/a.png" onerror="alert(1)"><p onmouseover="x()">t</p>`)
	if strings.Contains(got, "onerror") || strings.Contains(got, "onmouseover") {
		t.Errorf("SanitizeHTML() = %q, event handlers survived", got)
	}
	if !strings.Contains(got, `src="/a.png"`) {
		t.Errorf("SanitizeHTML() = %q, image source lost", got)
	}
}

func TestSanitizeHTMLScriptURLPlaceholderNeverLeaks(t *testing.T) {
	got := SanitizeHTML(`<a href="javascript:a()">a</a><img src="javascript:b()" alt="b">`)
	if strings.Contains(got, blockedURL) || strings.Contains(got, "javascript") {
		t.Errorf("SanitizeHTML() = %q, script URL or placeholder survived", got)
	}
	if !strings.Contains(got, `<a href="#">a</a>`) {
		t.Errorf("SanitizeHTML() = %q, want anchor rewritten to \"#\"", got)
	}
}

func TestIsScriptURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"javascript:alert(1)", true},
		{"  javascript:void(0)", true},
		{"vbscript:msgbox", true},
		{"data:text/html;base64,PHNjcmlwdD4=", true},
		{"data:image/png;base64,AAAA", false},
		{"https://example.com", false},
		{"/javascript:relative", false},
		{"#", false},
	}

	for _, tt := range tests {
		if got := isScriptURL(tt.in); got != tt.want {
			t.Errorf("isScriptURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
