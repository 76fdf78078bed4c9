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

// Package sweeper expires lapsed invitations on a schedule. Expiry itself is decided
// lazily on read, so the sweep only makes stored state catch up.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/roster/pkg/cache"
	"github.com/go-arcade/roster/pkg/cron"
	"github.com/go-arcade/roster/pkg/log"
)

const (
	JobName = "invitation-sweep"

	lockKey        = "invitation:sweep"
	defaultSpec    = "@every 1h"
	defaultLockTTL = 5 * time.Minute
)

// Conf is the [sweeper] section
type Conf struct {
	Enable  bool          `mapstructure:"enable"`
	Spec    string        `mapstructure:"spec"`
	LockTTL time.Duration `mapstructure:"lockTtl"`
}

func (c *Conf) SetDefaults() {
	if c.Spec == "" {
		c.Spec = defaultSpec
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaultLockTTL
	}
}

// Cleaner expires every lapsed pending invitation and reports how many changed.
type Cleaner interface {
	CleanupExpiredInvitations(ctx context.Context) (int64, error)
}

type Sweeper struct {
	conf    Conf
	cleaner Cleaner
	locker  cache.Locker
}

func New(conf Conf, cleaner Cleaner, locker cache.Locker) *Sweeper {
	conf.SetDefaults()
	if locker == nil {
		locker = cache.NopLocker{}
	}
	return &Sweeper{conf: conf, cleaner: cleaner, locker: locker}
}

// Register adds the sweep to sched when enabled.
func (s *Sweeper) Register(sched *cron.Scheduler) error {
	if !s.conf.Enable {
		log.Infow("invitation sweeper disabled")
		return nil
	}
	return sched.AddFunc(JobName, s.conf.Spec, func(ctx context.Context) error {
		_, err := s.Sweep(ctx)
		return err
	})
}

// Sweep runs one cleanup pass. Another instance holding the lock makes it a no-op.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	lock, err := s.locker.TryLock(ctx, lockKey, s.conf.LockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		log.Debugw("invitation sweep skipped, lock held elsewhere")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sweep lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warnw("release sweep lock", "error", err)
		}
	}()

	start := time.Now()
	n, err := s.cleaner.CleanupExpiredInvitations(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired invitations: %w", err)
	}
	log.Infow("invitation sweep finished", "expired", n, "took", time.Since(start))
	return n, nil
}
