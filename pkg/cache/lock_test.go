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

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLock mimics the two redis commands the lock issues.
type memLock struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemLock() *memLock {
	return &memLock{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memLock) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewBoolResult(false, m.err)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	m.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *memLock) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if script != releaseScript {
		return redis.NewCmdResult(nil, errors.New("unexpected script"))
	}
	if m.data[keys[0]] == args[0].(string) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	store := newMemLock()
	locker := NewRedisLocker(store, "roster:lock:")

	lock, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, store.ttl["roster:lock:sweep"])

	_, err = locker.TryLock(ctx, "sweep", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(ctx))
	again, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestRedisLocker_ReleaseKeepsForeignOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemLock()
	locker := NewRedisLocker(store, "")

	lock, err := locker.TryLock(ctx, "sweep", time.Second)
	require.NoError(t, err)

	// lease expired and another instance took the key
	store.data["sweep"] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.data["sweep"])
}

func TestRedisLocker_ClientError(t *testing.T) {
	store := newMemLock()
	store.err = errors.New("connection refused")

	_, err := NewRedisLocker(store, "").TryLock(context.Background(), "sweep", time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockHeld)
}

func TestNopLocker(t *testing.T) {
	lock, err := NopLocker{}.TryLock(context.Background(), "any", time.Second)
	require.NoError(t, err)
	assert.NoError(t, lock.Release(context.Background()))
}

func TestRedisConfig(t *testing.T) {
	assert.False(t, Redis{}.Enabled())
	assert.True(t, Redis{Address: "127.0.0.1:6379"}.Enabled())

	_, err := NewRedis(context.Background(), Redis{Mode: "cluster", Address: "x"})
	assert.ErrorContains(t, err, "unsupported redis mode")
}
