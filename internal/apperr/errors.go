// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the typed errors raised by the content engine.
// The HTTP layer maps each type to a status code; anything else is treated
// as an unexpected failure.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError reports malformed input or a violated state precondition.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// SlugConflictError reports that a slug is already taken within its class.
type SlugConflictError struct {
	Class string
	Slug  string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("%s slug %q is already in use", e.Class, e.Slug)
}

// NotFoundError reports that the targeted entity does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

// NotFound returns a NotFoundError for an entity identified by id.
func NotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprintf("%d", id)}
}

// NotFoundBy returns a NotFoundError for an entity identified by name or slug.
func NotFoundBy(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// FromValidation converts ozzo-validation errors into a ValidationError.
// Errors that are not validation errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	flatten("", verrs, fields)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

func flatten(prefix string, verrs validation.Errors, out map[string]string) {
	for key, err := range verrs {
		if err == nil {
			continue
		}
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(name, nested, out)
			continue
		}
		out[name] = err.Error()
	}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsSlugConflict reports whether err is a SlugConflictError.
func IsSlugConflict(err error) bool {
	var e *SlugConflictError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
