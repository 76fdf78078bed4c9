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

package conf

import (
	"github.com/go-arcade/roster/internal/roster/notify"
	"github.com/go-arcade/roster/internal/roster/service"
	"github.com/go-arcade/roster/internal/roster/sweeper"
	"github.com/go-arcade/roster/pkg/cache"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/metrics"
	"github.com/go-arcade/roster/pkg/trace"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideInvitationConfig,
	ProvideMailConfig,
	ProvideSweeperConfig,
	ProvideMetricsConfig,
	ProvideTraceConfig,
)

// ProvideConf 提供应用配置
func ProvideConf(l *Loader) AppConfig {
	return l.Config()
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf AppConfig) *log.Conf {
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf AppConfig) database.Database {
	return appConf.Database
}

// ProvideRedisConfig 提供 Redis 配置
func ProvideRedisConfig(appConf AppConfig) cache.Redis {
	return appConf.Redis
}

// ProvideInvitationConfig 提供邀请配置
func ProvideInvitationConfig(appConf AppConfig) service.InvitationConf {
	c := appConf.Invitation
	c.SetDefaults()
	return c
}

// ProvideMailConfig 提供邮件配置
func ProvideMailConfig(appConf AppConfig) notify.Conf {
	return appConf.Mail
}

// ProvideSweeperConfig 提供清理任务配置
func ProvideSweeperConfig(appConf AppConfig) sweeper.Conf {
	c := appConf.Sweeper
	c.SetDefaults()
	return c
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf AppConfig) metrics.MetricsConfig {
	return appConf.Metrics
}

// ProvideTraceConfig 提供链路追踪配置
func ProvideTraceConfig(appConf AppConfig) trace.Conf {
	return appConf.Trace
}
