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

package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-arcade/roster/pkg/cache"
	"github.com/go-arcade/roster/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (c *fakeCleaner) CleanupExpiredInvitations(context.Context) (int64, error) {
	c.calls.Add(1)
	return c.n, c.err
}

type fakeLocker struct {
	held     bool
	err      error
	key      string
	ttl      time.Duration
	released atomic.Int32
}

func (l *fakeLocker) TryLock(_ context.Context, key string, ttl time.Duration) (cache.Lock, error) {
	l.key, l.ttl = key, ttl
	if l.err != nil {
		return nil, l.err
	}
	if l.held {
		return nil, cache.ErrLockHeld
	}
	return fakeLock{l}, nil
}

type fakeLock struct{ l *fakeLocker }

func (f fakeLock) Release(context.Context) error {
	f.l.released.Add(1)
	return nil
}

func TestConf_SetDefaults(t *testing.T) {
	c := Conf{}
	c.SetDefaults()
	assert.Equal(t, "@every 1h", c.Spec)
	assert.Equal(t, 5*time.Minute, c.LockTTL)

	c = Conf{Spec: "0 */5 * * * *", LockTTL: time.Minute}
	c.SetDefaults()
	assert.Equal(t, "0 */5 * * * *", c.Spec)
	assert.Equal(t, time.Minute, c.LockTTL)
}

func TestSweeper_Sweep(t *testing.T) {
	cleaner := &fakeCleaner{n: 3}
	locker := &fakeLocker{}
	s := New(Conf{Enable: true, LockTTL: time.Minute}, cleaner, locker)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.EqualValues(t, 1, cleaner.calls.Load())
	assert.Equal(t, "invitation:sweep", locker.key)
	assert.Equal(t, time.Minute, locker.ttl)
	assert.EqualValues(t, 1, locker.released.Load())
}

func TestSweeper_LockHeld(t *testing.T) {
	cleaner := &fakeCleaner{n: 3}
	s := New(Conf{Enable: true}, cleaner, &fakeLocker{held: true})

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, cleaner.calls.Load())
}

func TestSweeper_Errors(t *testing.T) {
	boom := errors.New("redis: connection refused")
	s := New(Conf{Enable: true}, &fakeCleaner{}, &fakeLocker{err: boom})
	_, err := s.Sweep(context.Background())
	assert.ErrorIs(t, err, boom)

	failing := errors.New("database is locked")
	locker := &fakeLocker{}
	s = New(Conf{Enable: true}, &fakeCleaner{err: failing}, locker)
	_, err = s.Sweep(context.Background())
	assert.ErrorIs(t, err, failing)
	assert.EqualValues(t, 1, locker.released.Load())
}

func TestSweeper_Register(t *testing.T) {
	sched := cron.New()
	require.NoError(t, New(Conf{}, &fakeCleaner{}, nil).Register(sched))
	assert.Empty(t, sched.Entries(time.Now()))

	cleaner := &fakeCleaner{n: 1}
	require.NoError(t, New(Conf{Enable: true}, cleaner, nil).Register(sched))
	entries := sched.Entries(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))
	require.Len(t, entries, 1)
	assert.Equal(t, JobName, entries[0].Name)
	assert.Equal(t, "@every 1h", entries[0].Spec)

	require.NoError(t, sched.Trigger(JobName))
	assert.EqualValues(t, 1, cleaner.calls.Load())
}

func TestSweeper_RegisterBadSpec(t *testing.T) {
	err := New(Conf{Enable: true, Spec: "every now and then"}, &fakeCleaner{}, nil).Register(cron.New())
	assert.Error(t, err)
}
