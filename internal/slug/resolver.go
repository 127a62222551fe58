// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package slug

import (
	"context"
	"fmt"

	"github.com/olegiv/blockcms/internal/apperr"
)

// Class scopes slug uniqueness. Slugs of different classes never collide.
type Class string

// Entity classes
const (
	ClassPage     Class = "page"
	ClassPost     Class = "post"
	ClassCategory Class = "category"
	ClassTag      Class = "tag"
)

// Checker reports whether a slug is already stored for a class.
type Checker interface {
	SlugExists(ctx context.Context, class Class, slug string) (bool, error)
}

// Resolver answers slug availability questions. It checks existence only;
// format is validated upstream. Run it on a transaction-bound Checker so the
// check and the following write see the same snapshot.
type Resolver struct {
	checker Checker
}

// NewResolver creates a Resolver backed by checker.
func NewResolver(checker Checker) *Resolver {
	return &Resolver{checker: checker}
}

// IsAvailable reports whether candidate is unused within class.
func (r *Resolver) IsAvailable(ctx context.Context, class Class, candidate string) (bool, error) {
	exists, err := r.checker.SlugExists(ctx, class, candidate)
	if err != nil {
		return false, fmt.Errorf("checking %s slug: %w", class, err)
	}
	return !exists, nil
}

// IsAvailableFor is IsAvailable for an entity whose slug is currently
// current. Keeping the current slug is always allowed.
func (r *Resolver) IsAvailableFor(ctx context.Context, class Class, candidate, current string) (bool, error) {
	if current != "" && candidate == current {
		return true, nil
	}
	return r.IsAvailable(ctx, class, candidate)
}

// AssertAvailable returns a SlugConflictError when candidate is taken.
func (r *Resolver) AssertAvailable(ctx context.Context, class Class, candidate string) error {
	ok, err := r.IsAvailable(ctx, class, candidate)
	if err != nil {
		return err
	}
	if !ok {
		return &apperr.SlugConflictError{Class: string(class), Slug: candidate}
	}
	return nil
}

// AssertAvailableFor is AssertAvailable for an update. The check is skipped
// only when candidate equals the entity's current slug.
func (r *Resolver) AssertAvailableFor(ctx context.Context, class Class, candidate, current string) error {
	if candidate == current {
		return nil
	}
	return r.AssertAvailable(ctx, class, candidate)
}
