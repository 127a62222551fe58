// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"bytes"
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/slug"
)

// Optional is a nullable patch field. Set distinguishes a key that was
// sent, possibly as null, from one that was left out.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler. It is invoked for JSON null as
// well, which is what marks the field as set.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// apply overwrites dst when the field was sent.
func (o Optional[T]) apply(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

var statusRule = validation.In(
	model.StatusDraft, model.StatusScheduled, model.StatusPublished, model.StatusArchived,
).Error("must be one of draft, scheduled, published, archived")

var slugRules = []validation.Rule{
	validation.Length(1, slug.MaxLength),
	validation.Match(slug.Pattern).Error("must be lowercase alphanumeric with single hyphens"),
}
