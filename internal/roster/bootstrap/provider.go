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

package bootstrap

import (
	"github.com/go-arcade/roster/internal/roster/notify"
	"github.com/go-arcade/roster/internal/roster/repo"
	"github.com/go-arcade/roster/internal/roster/service"
	"github.com/go-arcade/roster/internal/roster/sweeper"
	"github.com/go-arcade/roster/pkg/cache"
	"github.com/go-arcade/roster/pkg/cron"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/metrics"
	"github.com/go-arcade/roster/pkg/trace"
	"github.com/go-arcade/roster/pkg/trace/inject"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProviderSet 提供基础设施与服务层的依赖
var ProviderSet = wire.NewSet(
	ProvideGorm,
	database.ProvideIDatabase,
	ProvideRedis,
	cache.ProvideLocker,
	repo.ProviderSet,
	ProvideDispatcher,
	service.ProviderSet,
	ProvideScheduler,
	ProvideSweeper,
	metrics.ProviderSet,
	wire.Struct(new(App), "*"),
)

// ProvideGorm opens the database and instruments it when tracing is on.
func ProvideGorm(conf database.Database, tc trace.Conf) (*gorm.DB, func(), error) {
	db, cleanup, err := database.ProvideGorm(conf)
	if err != nil {
		return nil, nil, err
	}
	if tc.Enabled {
		if err := inject.RegisterGormPlugin(db, false); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return db, cleanup, nil
}

// ProvideRedis 提供 Redis 实例, nil when redis is not configured
func ProvideRedis(conf cache.Redis, tc trace.Conf) (*redis.Client, func(), error) {
	client, cleanup, err := cache.ProvideRedis(conf)
	if err != nil {
		return nil, nil, err
	}
	if client != nil && tc.Enabled {
		client.AddHook(inject.NewRedisHook())
	}
	return client, cleanup, nil
}

// ProvideDispatcher 提供邀请邮件发送器
func ProvideDispatcher(mail notify.Conf, inv service.InvitationConf) (notify.Dispatcher, error) {
	d, err := notify.New(mail, inv.AcceptURL)
	if err != nil {
		return nil, err
	}
	log.Infow("invitation dispatcher ready", "driver", mail.Driver)
	return d, nil
}

// ProvideScheduler 提供定时任务调度器
func ProvideScheduler() *cron.Scheduler {
	return cron.New()
}

// ProvideSweeper registers the expiry sweep on sched.
func ProvideSweeper(conf sweeper.Conf, svc *service.InvitationService, locker cache.Locker, sched *cron.Scheduler) (*sweeper.Sweeper, error) {
	s := sweeper.New(conf, svc, locker)
	if err := s.Register(sched); err != nil {
		return nil, err
	}
	return s, nil
}
