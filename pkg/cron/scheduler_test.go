// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu   sync.Mutex
	runs map[string]int
	errs map[string]int
	jobs int
}

func (f *fakeRecorder) RecordJobRun(name string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[name]++
	if err != nil {
		f.errs[name]++
	}
}

func (f *fakeRecorder) UpdateJobsCount(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = count
}

func TestScheduler_AddFunc(t *testing.T) {
	s := New()

	require.NoError(t, s.AddFunc("sweep", "@every 1h", func(context.Context) error { return nil }))
	assert.ErrorIs(t, s.AddFunc("sweep", "@every 1h", func(context.Context) error { return nil }), ErrJobExists)
	assert.Error(t, s.AddFunc("broken", "not a spec", func(context.Context) error { return nil }))

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	entries := s.Entries(now)
	require.Len(t, entries, 1)
	assert.Equal(t, "sweep", entries[0].Name)
	assert.Equal(t, now.Add(time.Hour), entries[0].Next)
}

func TestScheduler_Trigger(t *testing.T) {
	rec := &fakeRecorder{runs: map[string]int{}, errs: map[string]int{}}
	SetMetricsRecorder(rec)
	t.Cleanup(func() { SetMetricsRecorder(nil) })

	s := New()
	calls := 0
	boom := errors.New("boom")
	require.NoError(t, s.AddFunc("ok", "@every 1h", func(context.Context) error { calls++; return nil }))
	require.NoError(t, s.AddFunc("fail", "@every 1h", func(context.Context) error { return boom }))

	require.NoError(t, s.Trigger("ok"))
	assert.ErrorIs(t, s.Trigger("fail"), boom)
	assert.ErrorIs(t, s.Trigger("missing"), ErrJobNotFound)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rec.runs["ok"])
	assert.Equal(t, 1, rec.errs["fail"])
	assert.Equal(t, 2, rec.jobs)
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := New()
	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0
	require.NoError(t, s.AddFunc("slow", "@every 1h", func(context.Context) error {
		runs++
		close(started)
		<-release
		return nil
	}))

	go func() { _ = s.Trigger("slow") }()
	<-started
	require.NoError(t, s.Trigger("slow"))
	close(release)

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, runs)
}

func TestScheduler_StopCancelsJobs(t *testing.T) {
	s := New()
	started := make(chan struct{})
	require.NoError(t, s.AddFunc("wait", "@every 1h", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	s.Start()

	go func() { _ = s.Trigger("wait") }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_PanicIsFailedRun(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFunc("panics", "@every 1h", func(context.Context) error { panic("boom") }))

	err := s.Trigger("panics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestScheduler_TriggerAfterStop(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFunc("noop", "@every 1h", func(context.Context) error { return nil }))
	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.Trigger("noop"), ErrStopped)
}
