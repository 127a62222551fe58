// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// DocumentVersion is the content document format written by this engine.
const DocumentVersion = 1

// Block is one typed unit of page or post content. Type is an open tag:
// unknown values are carried through unchanged.
type Block struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Document is the persisted contentJson shape.
type Document struct {
	Version int     `json:"version"`
	Blocks  []Block `json:"blocks"`
}

// EmptyDocument returns the normalized form of an absent document.
func EmptyDocument() Document {
	return Document{Version: DocumentVersion, Blocks: []Block{}}
}

// Known block types. Anything else is accepted with a warning.
var knownBlockTypes = map[string]struct{}{
	"hero":         {},
	"richText":     {},
	"text":         {},
	"heading":      {},
	"image":        {},
	"gallery":      {},
	"video":        {},
	"embed":        {},
	"html":         {},
	"quote":        {},
	"faq":          {},
	"cta":          {},
	"features":     {},
	"testimonials": {},
	"pricing":      {},
	"productGrid":  {},
	"columns":      {},
	"spacer":       {},
	"divider":      {},
	"contactForm":  {},
	"newsletter":   {},
}

// IsKnownBlockType reports whether t is on the block type allowlist.
func IsKnownBlockType(t string) bool {
	_, ok := knownBlockTypes[t]
	return ok
}
