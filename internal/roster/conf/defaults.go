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
	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/pkg/id"
	"github.com/spf13/viper"
)

// setDefaults makes an empty file a runnable single node setup on sqlite.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.path", "./logs")
	v.SetDefault("log.filename", "roster.log")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.keepHours", 7)
	v.SetDefault("log.rotateSize", 100)
	v.SetDefault("log.rotateNum", 10)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "roster.db")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db", "roster")
	v.SetDefault("database.output", false)
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifeTime", 300)
	v.SetDefault("database.maxIdleTime", 60)

	v.SetDefault("redis.mode", "single")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.dialTimeout", 5)
	v.SetDefault("redis.readTimeout", 3)
	v.SetDefault("redis.writeTimeout", 3)

	v.SetDefault("invitation.ttl", model.DefaultInvitationTTL.String())
	v.SetDefault("invitation.tokenLength", id.MinTokenLength)
	v.SetDefault("invitation.acceptUrl", "http://localhost:8080/invitations/accept")

	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.from", "no-reply@localhost")
	v.SetDefault("mail.fromName", "Roster")
	v.SetDefault("mail.smtp.host", "")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")
	v.SetDefault("mail.http.endpoint", "")
	v.SetDefault("mail.http.apiKey", "")
	v.SetDefault("mail.http.timeout", 10)
	v.SetDefault("mail.http.retries", 3)

	v.SetDefault("sweeper.enable", true)
	v.SetDefault("sweeper.spec", "@every 1h")
	v.SetDefault("sweeper.lockTtl", "5m")

	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.pprof", false)

	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.serviceName", "roster")
	v.SetDefault("trace.exporter", "none")
	v.SetDefault("trace.endpoint", "")
	v.SetDefault("trace.insecure", true)
	v.SetDefault("trace.sampleRatio", 1.0)
}
