// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"context"
	"time"

	"github.com/olegiv/blockcms/internal/apperr"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// assignFlag moves a singleton flag to page id: the current holder is
// cleared first, then the target is set, in q's transaction.
func assignFlag(ctx context.Context, q *store.Queries, flag store.PageFlag, id int64, now time.Time) error {
	if err := q.LockSingletons(ctx); err != nil {
		return err
	}
	if err := q.ClearPageFlag(ctx, flag, now); err != nil {
		return err
	}
	ok, err := q.SetPageFlag(ctx, flag, id, true, now)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("page", id)
	}
	return nil
}

// applyFlags honours isHome/isShop from a create or update payload. Only
// true triggers a move.
func (r *PageRepository) applyFlags(ctx context.Context, q *store.Queries, p *model.Page, isHome, isShop *bool, now time.Time) error {
	if isTrue(isHome) && !p.IsHome {
		if err := assignFlag(ctx, q, store.FlagHome, p.ID, now); err != nil {
			return err
		}
		p.IsHome = true
		p.UpdatedAt = now
	}
	if isTrue(isShop) && !p.IsShop {
		if err := assignFlag(ctx, q, store.FlagShop, p.ID, now); err != nil {
			return err
		}
		p.IsShop = true
		p.UpdatedAt = now
	}
	return nil
}

// SetHome makes page id the home page.
func (r *PageRepository) SetHome(ctx context.Context, id int64) (model.Page, error) {
	return r.setFlag(ctx, store.FlagHome, id, true)
}

// SetShop makes page id the shop page.
func (r *PageRepository) SetShop(ctx context.Context, id int64) (model.Page, error) {
	return r.setFlag(ctx, store.FlagShop, id, true)
}

// UnsetHome clears the home flag from page id, leaving no home page.
func (r *PageRepository) UnsetHome(ctx context.Context, id int64) (model.Page, error) {
	return r.setFlag(ctx, store.FlagHome, id, false)
}

// UnsetShop clears the shop flag from page id.
func (r *PageRepository) UnsetShop(ctx context.Context, id int64) (model.Page, error) {
	return r.setFlag(ctx, store.FlagShop, id, false)
}

func (r *PageRepository) setFlag(ctx context.Context, flag store.PageFlag, id int64, value bool) (model.Page, error) {
	var page model.Page
	err := r.db.WithTx(ctx, func(q *store.Queries) error {
		now := r.machine.Now()
		if value {
			if err := assignFlag(ctx, q, flag, id, now); err != nil {
				return err
			}
		} else {
			if err := q.LockSingletons(ctx); err != nil {
				return err
			}
			ok, err := q.SetPageFlag(ctx, flag, id, false, now)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.NotFound("page", id)
			}
		}
		p, err := q.GetPage(ctx, id)
		if err != nil {
			return notFound(err, "page", id)
		}
		page = p
		return nil
	})
	if err != nil {
		return model.Page{}, err
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("page flag changed", "page_id", id, "flag", string(flag), "value", value)
	return page, nil
}
