// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/apperr"
)

type fakeChecker struct {
	taken map[Class]map[string]bool
	err   error
	calls int
}

func (f *fakeChecker) SlugExists(_ context.Context, class Class, slug string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.taken[class][slug], nil
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{taken: map[Class]map[string]bool{
		ClassPage: {"about": true, "contact": true},
		ClassPost: {"hello": true},
	}}
}

func TestResolverIsAvailable(t *testing.T) {
	r := NewResolver(newFakeChecker())
	ctx := context.Background()

	ok, err := r.IsAvailable(ctx, ClassPage, "about")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsAvailable(ctx, ClassPost, "about")
	require.NoError(t, err)
	assert.True(t, ok, "slugs are scoped per class")
}

func TestResolverAssertAvailable(t *testing.T) {
	r := NewResolver(newFakeChecker())

	err := r.AssertAvailable(context.Background(), ClassPost, "hello")
	var conflict *apperr.SlugConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "hello", conflict.Slug)
	assert.Equal(t, "post", conflict.Class)

	assert.NoError(t, r.AssertAvailable(context.Background(), ClassTag, "hello"))
}

func TestResolverAssertAvailableFor(t *testing.T) {
	checker := newFakeChecker()
	r := NewResolver(checker)
	ctx := context.Background()

	// Unchanged slug skips the lookup entirely.
	require.NoError(t, r.AssertAvailableFor(ctx, ClassPage, "about", "about"))
	assert.Equal(t, 0, checker.calls)

	// Another existing page's slug is a conflict.
	err := r.AssertAvailableFor(ctx, ClassPage, "contact", "about")
	assert.True(t, apperr.IsSlugConflict(err))

	require.NoError(t, r.AssertAvailableFor(ctx, ClassPage, "team", "about"))
}

func TestResolverIsAvailableFor(t *testing.T) {
	r := NewResolver(newFakeChecker())
	ctx := context.Background()

	ok, err := r.IsAvailableFor(ctx, ClassPage, "about", "about")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsAvailableFor(ctx, ClassPage, "about", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolverPropagatesLookupErrors(t *testing.T) {
	checker := newFakeChecker()
	checker.err = errors.New("database is locked")
	r := NewResolver(checker)

	err := r.AssertAvailable(context.Background(), ClassCategory, "news")
	require.Error(t, err)
	assert.False(t, apperr.IsSlugConflict(err))
	assert.ErrorIs(t, err, checker.err)
}
