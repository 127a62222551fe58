// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olegiv/blockcms/internal/scheduler"
)

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, db, err := openDB(cmdContext(cmd))
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Publish scheduled content that is due and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmdContext(cmd)
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			sched := scheduler.New(a.repos.Sweeper, a.events, a.logger, scheduler.Options{})
			res, err := sched.RunOnce(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "published %d pages and %d posts (%d failures)\n",
				res.Pages, res.Posts, res.Failures)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default home page and settings on an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmdContext(cmd)
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.repos.Seed(ctx); err != nil {
				return fmt.Errorf("seeding database: %w", err)
			}
			return nil
		},
	}
}
