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

// Package cron runs named jobs on cron schedules on top of robfig/cron.
package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/safe"
	"github.com/robfig/cron"
)

var (
	ErrJobExists   = errors.New("cron job already registered")
	ErrJobNotFound = errors.New("cron job not found")
	ErrStopped     = errors.New("cron scheduler stopped")
)

// JobFunc is one run of a job. ctx is cancelled when the scheduler stops.
type JobFunc func(ctx context.Context) error

// MetricsRecorder receives job runs
type MetricsRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateJobsCount(count int)
}

var (
	recorderMu sync.RWMutex
	recorder   MetricsRecorder
)

// SetMetricsRecorder installs the process wide job recorder
func SetMetricsRecorder(r MetricsRecorder) {
	recorderMu.Lock()
	defer recorderMu.Unlock()
	recorder = r
}

func getRecorder() MetricsRecorder {
	recorderMu.RLock()
	defer recorderMu.RUnlock()
	return recorder
}

type job struct {
	name     string
	spec     string
	fn       JobFunc
	schedule cron.Schedule
	running  atomic.Bool
}

// Scheduler runs named jobs. A job whose previous run has not finished is skipped
// and a panicking job is reported as a failed run.
type Scheduler struct {
	mu      sync.Mutex
	c       *cron.Cron
	jobs    map[string]*job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	start   bool
	stopped bool
}

// New creates a stopped scheduler
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		c:      cron.New(),
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddFunc registers fn under name. spec accepts six field expressions and descriptors such as "@every 1h".
func (s *Scheduler) AddFunc(name, spec string, fn JobFunc) error {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	j := &job{name: name, spec: spec, fn: fn, schedule: schedule}
	s.jobs[name] = j
	s.c.Schedule(schedule, cron.FuncJob(func() { s.run(j) }))

	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(s.jobs))
	}
	log.Infow("cron job registered", "job", name, "spec", spec)
	return nil
}

// Trigger runs the named job now and waits for it.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(j)
}

func (s *Scheduler) run(j *job) error {
	if !j.running.CompareAndSwap(false, true) {
		log.Warnw("cron job still running, skipped", "job", j.name)
		return nil
	}
	defer j.running.Store(false)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	start := time.Now()
	err := safe.Do(func() error { return j.fn(s.ctx) })
	if r := getRecorder(); r != nil {
		r.RecordJobRun(j.name, time.Since(start), err)
	}
	if err != nil {
		log.Errorw("cron job failed", "job", j.name, "error", err)
	}
	return err
}

// Start begins scheduling in the background
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.start {
		return
	}
	s.start = true
	s.c.Start()
}

// Stop stops scheduling, cancels running jobs and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.start {
		s.c.Stop()
		s.start = false
	}
	s.stopped = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entry describes a registered job
type Entry struct {
	Name string
	Spec string
	Next time.Time
}

// Entries returns registered jobs sorted by name, with the next activation after now.
func (s *Scheduler) Entries(now time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, Entry{Name: j.name, Spec: j.spec, Next: j.schedule.Next(now)})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}
