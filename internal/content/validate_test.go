// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/apperr"
)

func TestValidateNil(t *testing.T) {
	doc, warnings, err := Validate(nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, doc.Version)
	assert.NotNil(t, doc.Blocks)
	assert.Empty(t, doc.Blocks)
}

func TestValidateKnownBlock(t *testing.T) {
	doc, warnings, err := Validate(map[string]any{
		"blocks": []any{
			map[string]any{"id": "a", "type": "hero", "data": map[string]any{}},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "a", doc.Blocks[0].ID)
	assert.Equal(t, "hero", doc.Blocks[0].Type)
}

func TestValidateUnknownBlockWarns(t *testing.T) {
	doc, warnings, err := Validate(map[string]any{
		"blocks": []any{
			map[string]any{"id": "a", "type": "mysteryBlock", "data": map[string]any{}},
		},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "mysteryBlock")
	assert.Contains(t, warnings[0], "blocks[0]")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "mysteryBlock", doc.Blocks[0].Type)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "array",
			input: []any{},
			want:  "must be a JSON object, not an array or primitive",
		},
		{
			name:  "string",
			input: "hello",
			want:  "must be a JSON object, not an array or primitive",
		},
		{
			name:  "number",
			input: float64(3),
			want:  "must be a JSON object, not an array or primitive",
		},
		{
			name:  "missing blocks",
			input: map[string]any{"version": float64(1)},
			want:  "blocks must be an array",
		},
		{
			name:  "blocks object",
			input: map[string]any{"blocks": map[string]any{}},
			want:  "blocks must be an array",
		},
		{
			name:  "block not object",
			input: map[string]any{"blocks": []any{"text"}},
			want:  "blocks[0] must be a JSON object",
		},
		{
			name:  "block array",
			input: map[string]any{"blocks": []any{[]any{}}},
			want:  "blocks[0] must be a JSON object",
		},
		{
			name: "missing id",
			input: map[string]any{"blocks": []any{
				map[string]any{"type": "hero", "data": map[string]any{}},
			}},
			want: "blocks[0].id must be a non-empty string",
		},
		{
			name: "empty id second block",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": "a", "type": "hero"},
				map[string]any{"id": "", "type": "hero"},
			}},
			want: "blocks[1].id must be a non-empty string",
		},
		{
			name: "numeric id",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": float64(1), "type": "hero"},
			}},
			want: "blocks[0].id must be a non-empty string",
		},
		{
			name: "missing type",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": "a"},
			}},
			want: "blocks[0].type must be a non-empty string",
		},
		{
			name: "data array",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": "a", "type": "hero", "data": []any{}},
			}},
			want: "blocks[0].data must be a JSON object",
		},
		{
			name: "data null",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": "a", "type": "hero", "data": nil},
			}},
			want: "blocks[0].data must be a JSON object",
		},
		{
			name: "settings primitive",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": "a", "type": "hero", "settings": "wide"},
			}},
			want: "blocks[0].settings must be a JSON object",
		},
		{
			name: "duplicate id",
			input: map[string]any{"blocks": []any{
				map[string]any{"id": "a", "type": "hero"},
				map[string]any{"id": "a", "type": "faq"},
			}},
			want: "blocks[1].id \"a\" duplicates blocks[0]",
		},
		{
			name:  "zero version",
			input: map[string]any{"version": float64(0), "blocks": []any{}},
			want:  "version must be a positive integer",
		},
		{
			name:  "fractional version",
			input: map[string]any{"version": 1.5, "blocks": []any{}},
			want:  "version must be a positive integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Validate(tt.input)
			require.Error(t, err)

			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Contains(t, verr.Message, tt.want)
			assert.Equal(t, verr.Message, verr.Fields[Field])
		})
	}
}

func TestValidateMissingDataDefaultsToEmptyObject(t *testing.T) {
	doc, _, err := Validate(map[string]any{"blocks": []any{
		map[string]any{"id": "a", "type": "divider"},
	}})
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	assert.NotNil(t, doc.Blocks[0].Data)
	assert.Nil(t, doc.Blocks[0].Settings)
}

func TestParseJSON(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		doc, _, err := ParseJSON(nil)
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Version)
		assert.Empty(t, doc.Blocks)
	})

	t.Run("null", func(t *testing.T) {
		doc, _, err := ParseJSON([]byte(" null "))
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Version)
	})

	t.Run("version normalized", func(t *testing.T) {
		doc, warnings, err := ParseJSON([]byte(`{"version":7,"blocks":[{"id":"x","type":"faq","data":{"items":[{"q":"a"}]},"settings":{"bg":"dark"}}]}`))
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, 1, doc.Version)
		require.Len(t, doc.Blocks, 1)
		assert.Equal(t, "dark", doc.Blocks[0].Settings["bg"])
	})

	t.Run("invalid json", func(t *testing.T) {
		_, _, err := ParseJSON([]byte(`{"blocks":`))
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("array", func(t *testing.T) {
		_, _, err := ParseJSON([]byte(`[]`))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "not an array or primitive"))
	})
}
