// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content validates block documents and cleans untrusted HTML
// before it reaches storage.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
)

// Field is the payload key reported in validation errors.
const Field = "contentJson"

// ParseJSON decodes raw contentJson and validates it. Empty input and a
// JSON null both normalize to an empty document.
func ParseJSON(raw []byte) (model.Document, []string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return model.EmptyDocument(), nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return model.Document{}, nil, apperr.Invalid(Field, Field+" is not valid JSON")
	}
	return Validate(v)
}

// Validate checks an arbitrary decoded value claiming to be contentJson.
// It returns the normalized document and a warning for every block whose
// type is not on the allowlist. Validate has no side effects.
func Validate(v any) (model.Document, []string, error) {
	if v == nil {
		return model.EmptyDocument(), nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return reject(Field + " must be a JSON object, not an array or primitive")
	}

	// A supplied version is checked but never stored; documents are always
	// written in the current shape.
	if raw, present := obj["version"]; present && raw != nil {
		if _, ok := positiveInt(raw); !ok {
			return reject(Field + ".version must be a positive integer")
		}
	}
	doc := model.Document{Version: model.DocumentVersion}

	list, ok := obj["blocks"].([]any)
	if !ok {
		return reject(Field + ".blocks must be an array")
	}

	var warnings []string
	seen := make(map[string]int, len(list))
	doc.Blocks = make([]model.Block, 0, len(list))
	for i, item := range list {
		b, ok := item.(map[string]any)
		if !ok {
			return reject(fmt.Sprintf("%s.blocks[%d] must be a JSON object", Field, i))
		}

		id, ok := b["id"].(string)
		if !ok || id == "" {
			return reject(fmt.Sprintf("%s.blocks[%d].id must be a non-empty string", Field, i))
		}
		if prev, dup := seen[id]; dup {
			return reject(fmt.Sprintf("%s.blocks[%d].id %q duplicates blocks[%d]", Field, i, id, prev))
		}
		seen[id] = i

		typ, ok := b["type"].(string)
		if !ok || typ == "" {
			return reject(fmt.Sprintf("%s.blocks[%d].type must be a non-empty string", Field, i))
		}

		block := model.Block{ID: id, Type: typ, Data: map[string]any{}}
		if raw, present := b["data"]; present {
			data, ok := raw.(map[string]any)
			if !ok {
				return reject(fmt.Sprintf("%s.blocks[%d].data must be a JSON object", Field, i))
			}
			block.Data = data
		}
		if raw, present := b["settings"]; present && raw != nil {
			settings, ok := raw.(map[string]any)
			if !ok {
				return reject(fmt.Sprintf("%s.blocks[%d].settings must be a JSON object", Field, i))
			}
			block.Settings = settings
		}

		if !model.IsKnownBlockType(typ) {
			warnings = append(warnings, fmt.Sprintf("%s.blocks[%d]: unknown block type %q", Field, i, typ))
		}
		doc.Blocks = append(doc.Blocks, block)
	}

	return doc, warnings, nil
}

func reject(msg string) (model.Document, []string, error) {
	return model.Document{}, nil, apperr.Invalid(Field, msg)
}

func positiveInt(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		f = float64(i)
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
