// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apperr

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{
		Message: "validation failed",
		Fields:  map[string]string{"slug": "required", "title": "too long"},
	}
	assert.Equal(t, "validation failed (slug: required; title: too long)", err.Error())

	bare := &ValidationError{Message: "scheduledAt must be in the future"}
	assert.Equal(t, "scheduledAt must be in the future", bare.Error())
}

func TestInvalid(t *testing.T) {
	err := Invalid("contentJson", "contentJson.blocks[0].id must be a non-empty string")
	assert.Equal(t, err.Message, err.Fields["contentJson"])
}

func TestSlugConflictError(t *testing.T) {
	err := &SlugConflictError{Class: "post", Slug: "hello"}
	assert.Equal(t, `post slug "hello" is already in use`, err.Error())
}

func TestNotFoundError(t *testing.T) {
	assert.Equal(t, "page 42 not found", NotFound("page", 42).Error())
	assert.Equal(t, "page home not found", NotFoundBy("page", "home").Error())
	assert.Equal(t, "settings not found", (&NotFoundError{Entity: "settings"}).Error())
}

func TestIsHelpersUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("update post: %w", &SlugConflictError{Class: "post", Slug: "x"})
	assert.True(t, IsSlugConflict(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))

	assert.True(t, IsNotFound(fmt.Errorf("load: %w", NotFound("post", 1))))
	assert.True(t, IsValidation(fmt.Errorf("create: %w", Invalid("slug", "bad"))))
}

func TestFromValidation(t *testing.T) {
	type input struct {
		Title string
		Slug  string
	}
	in := input{}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Slug, validation.Required),
	)
	require.Error(t, err)

	converted := FromValidation(err)
	var verr *ValidationError
	require.True(t, errors.As(converted, &verr))
	assert.Contains(t, verr.Fields, "Title")
	assert.Contains(t, verr.Fields, "Slug")
}

func TestFromValidationPassesThrough(t *testing.T) {
	assert.NoError(t, FromValidation(nil))

	other := errors.New("boom")
	assert.Same(t, other, FromValidation(other))
}

func TestFromValidationNested(t *testing.T) {
	err := validation.Errors{
		"settings": validation.Errors{"postsPerPage": errors.New("must be no greater than 100")},
	}
	var verr *ValidationError
	require.True(t, errors.As(FromValidation(err), &verr))
	assert.Equal(t, "must be no greater than 100", verr.Fields["settings.postsPerPage"])
}
