// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic scheduled-publish sweep and event log
// pruning on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/repository"
)

// Job names
const (
	JobSweep       = "publish-scheduled"
	JobPruneEvents = "prune-events"
)

// DefaultSweepSchedule runs the sweep every minute.
const DefaultSweepSchedule = "* * * * *"

// Sweeper promotes due scheduled content.
type Sweeper interface {
	PublishDue(ctx context.Context) (repository.SweepResult, error)
}

// EventRecorder persists audit events.
type EventRecorder interface {
	LogInfo(ctx context.Context, category, message string, metadata map[string]any) error
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Options configures a Scheduler.
type Options struct {
	// SweepSchedule is a standard five-field cron spec.
	SweepSchedule string
	// EventRetention enables daily pruning of older events when positive.
	EventRetention time.Duration
	// JobTimeout bounds a single run; zero means no bound.
	JobTimeout time.Duration
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"lastRun"`
	NextRun  time.Time `json:"nextRun"`
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	lastRun  time.Time
}

// Scheduler owns a cron instance running the content jobs.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	events  EventRecorder
	logger  *slog.Logger
	opts    Options

	mu      sync.Mutex
	jobs    map[string]*job
	started bool
}

// New creates a scheduler. events may be nil.
func New(sweeper Sweeper, events EventRecorder, logger *slog.Logger, opts Options) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SweepSchedule == "" {
		opts.SweepSchedule = DefaultSweepSchedule
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper: sweeper,
		events:  events,
		logger:  logger,
		opts:    opts,
		jobs:    make(map[string]*job),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	if err := s.addLocked(JobSweep, s.opts.SweepSchedule, s.sweepJob); err != nil {
		return err
	}
	if s.events != nil && s.opts.EventRetention > 0 {
		if err := s.addLocked(JobPruneEvents, "@daily", s.pruneJob); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.started = true
	s.logger.Info("scheduler started", "jobs", len(s.jobs), "sweep_schedule", s.opts.SweepSchedule)
	return nil
}

// Stop stops the cron loop and waits for running jobs, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()
	if !started {
		return
	}

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out; jobs still running", "category", model.EventCategoryScheduler)
	}
}

// Jobs lists the registered jobs by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{Name: j.name, Schedule: j.schedule, LastRun: j.lastRun}
		if e := s.cron.Entry(j.entryID); e.Valid() {
			info.NextRun = e.Next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// RunOnce runs a single sweep synchronously and records an audit event
// when anything was promoted.
func (s *Scheduler) RunOnce(ctx context.Context) (repository.SweepResult, error) {
	res, err := s.sweeper.PublishDue(ctx)
	if err != nil {
		return res, fmt.Errorf("publishing scheduled content: %w", err)
	}

	if res.Failures > 0 {
		s.logger.Warn("scheduled publish finished with failures",
			"category", model.EventCategoryScheduler,
			"pages", res.Pages,
			"posts", res.Posts,
			"failures", res.Failures)
	}
	if res.Pages+res.Posts > 0 && s.events != nil {
		err := s.events.LogInfo(ctx, model.EventCategoryScheduler, "published scheduled content", map[string]any{
			"pages":    res.Pages,
			"posts":    res.Posts,
			"failures": res.Failures,
		})
		if err != nil {
			s.logger.Debug("failed to record sweep event", "error", err)
		}
	}
	return res, nil
}

func (s *Scheduler) addLocked(name, spec string, fn func()) error {
	id, err := s.cron.AddFunc(spec, func() {
		s.markRun(name)
		fn()
	})
	if err != nil {
		return fmt.Errorf("scheduling %s (%q): %w", name, spec, err)
	}
	s.jobs[name] = &job{name: name, schedule: spec, entryID: id}
	return nil
}

func (s *Scheduler) markRun(name string) {
	s.mu.Lock()
	if j, ok := s.jobs[name]; ok {
		j.lastRun = time.Now().UTC()
	}
	s.mu.Unlock()
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	if s.opts.JobTimeout > 0 {
		return context.WithTimeout(context.Background(), s.opts.JobTimeout)
	}
	return context.WithCancel(context.Background())
}

func (s *Scheduler) sweepJob() {
	ctx, cancel := s.jobContext()
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled publish sweep failed", "category", model.EventCategoryScheduler, "error", err)
	}
}

func (s *Scheduler) pruneJob() {
	ctx, cancel := s.jobContext()
	defer cancel()

	n, err := s.events.DeleteOldEvents(ctx, s.opts.EventRetention)
	if err != nil {
		s.logger.Error("failed to prune event log", "category", model.EventCategoryScheduler, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("pruned event log", "deleted", n, "retention", s.opts.EventRetention)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{"category", model.EventCategoryScheduler, "error", err}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
