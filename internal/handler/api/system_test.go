// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/repository"
	"github.com/olegiv/blockcms/internal/scheduler"
)

type fakeScheduler struct {
	runs   int
	result repository.SweepResult
	err    error
}

func (f *fakeScheduler) Jobs() []scheduler.JobInfo {
	return []scheduler.JobInfo{{Name: scheduler.JobSweep, Schedule: "* * * * *"}}
}

func (f *fakeScheduler) RunOnce(context.Context) (repository.SweepResult, error) {
	f.runs++
	return f.result, f.err
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/healthz", nil)
	requireStatus(t, rr, http.StatusOK)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["database"].Status)
	assert.NotEmpty(t, status.Version.GoVersion)
	assert.Equal(t, "healthy", status.Checks["cache"].Status)
	require.NotNil(t, status.Cache)

	require.NoError(t, s.db.Close())
	rr = s.do(http.MethodGet, "/healthz", nil)
	requireStatus(t, rr, http.StatusServiceUnavailable)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "database unreachable", status.Checks["database"].Message)
	assert.Equal(t, "healthy", status.Checks["cache"].Status)
}

func TestHealthWithoutCache(t *testing.T) {
	s := newTestServer(t, func(d *Deps, _ *RouterConfig) { d.Cache = nil })

	rr := s.do(http.MethodGet, "/healthz", nil)
	requireStatus(t, rr, http.StatusOK)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.NotContains(t, status.Checks, "cache")
	assert.Nil(t, status.Cache)
}

func TestListEvents(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.events.LogInfo(ctx, model.EventCategoryScheduler, "first", nil))
	require.NoError(t, s.events.LogEvent(ctx, model.EventLevelError, model.EventCategoryHTTP, "second", map[string]any{"status": 500}))

	rr := s.do(http.MethodGet, "/api/v1/events", nil)
	requireStatus(t, rr, http.StatusOK)
	events := decode[[]model.Event](t, rr).Data
	require.Len(t, events, 2)

	rr = s.do(http.MethodGet, "/api/v1/events?limit=1", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Len(t, decode[[]model.Event](t, rr).Data, 1)

	requireStatus(t, s.do(http.MethodGet, "/api/v1/events?limit=many", nil), http.StatusBadRequest)
}

func TestEventsRouteRequiresService(t *testing.T) {
	s := newTestServer(t, func(d *Deps, _ *RouterConfig) { d.Events = nil })
	requireStatus(t, s.do(http.MethodGet, "/api/v1/events", nil), http.StatusNotFound)
	requireStatus(t, s.do(http.MethodGet, "/api/v1/scheduler/jobs", nil), http.StatusNotFound)
}

func TestSchedulerRoutes(t *testing.T) {
	sched := &fakeScheduler{result: repository.SweepResult{Pages: 1, Posts: 2}}
	s := newTestServer(t, func(d *Deps, _ *RouterConfig) { d.Scheduler = sched })

	rr := s.do(http.MethodGet, "/api/v1/scheduler/jobs", nil)
	requireStatus(t, rr, http.StatusOK)
	jobs := decode[[]scheduler.JobInfo](t, rr).Data
	require.Len(t, jobs, 1)
	assert.Equal(t, scheduler.JobSweep, jobs[0].Name)

	rr = s.do(http.MethodPost, "/api/v1/scheduler/run", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, repository.SweepResult{Pages: 1, Posts: 2}, decode[repository.SweepResult](t, rr).Data)
	assert.Equal(t, 1, sched.runs)

	sched.err = errors.New("database is locked")
	rr = s.do(http.MethodPost, "/api/v1/scheduler/run", nil)
	requireStatus(t, rr, http.StatusInternalServerError)
	assert.Equal(t, "internal_error", decodeError(t, rr).Code)
}

func TestSweepThroughRealScheduler(t *testing.T) {
	s := newTestServer(t, func(d *Deps, _ *RouterConfig) {
		d.Scheduler = scheduler.New(d.Repos.Sweeper, d.Events, d.Logger, scheduler.Options{})
	})

	post := s.createPost(map[string]any{"title": "Queued"})
	at := s.clock.Now().Add(time.Minute)
	requireStatus(t, s.do(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/schedule", post.ID), map[string]any{"scheduledAt": at}), http.StatusOK)

	s.clock.Advance(2 * time.Minute)
	rr := s.do(http.MethodPost, "/api/v1/scheduler/run", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, 1, decode[repository.SweepResult](t, rr).Data.Posts)

	rr = s.do(http.MethodGet, "/api/v1/public/posts/queued", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, model.StatusPublished, decode[model.Post](t, rr).Data.Status)

	rr = s.do(http.MethodGet, "/api/v1/events", nil)
	events := decode[[]model.Event](t, rr).Data
	require.NotEmpty(t, events)
	assert.Equal(t, "published scheduled content", events[0].Message)
}
