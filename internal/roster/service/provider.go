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

package service

import (
	"time"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/notify"
	"github.com/go-arcade/roster/internal/roster/repo"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/id"
	"github.com/go-arcade/roster/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideMemberService,
	ProvideInvitationService,
	wire.Struct(new(Services), "*"),
)

// InvitationConf is the [invitation] section
type InvitationConf struct {
	TTL         time.Duration `mapstructure:"ttl"`
	TokenLength int           `mapstructure:"tokenLength"`
	AcceptURL   string        `mapstructure:"acceptUrl"`
}

func (c *InvitationConf) SetDefaults() {
	if c.TTL <= 0 {
		c.TTL = model.DefaultInvitationTTL
	}
	if c.TokenLength < id.MinTokenLength {
		c.TokenLength = id.MinTokenLength
	}
}

// Services groups the service layer for the command entry points.
type Services struct {
	Member     *MemberService
	Invitation *InvitationService
}

// ProvideMemberService 提供成员服务
func ProvideMemberService(db database.IDatabase, repos *repo.Repositories, rec *metrics.InvitationRecorder) *MemberService {
	return NewMemberService(db, repos, WithMemberMetrics(rec))
}

// ProvideInvitationService 提供邀请服务
func ProvideInvitationService(
	conf InvitationConf,
	db database.IDatabase,
	repos *repo.Repositories,
	members *MemberService,
	dispatcher notify.Dispatcher,
	rec *metrics.InvitationRecorder,
) *InvitationService {
	conf.SetDefaults()
	return NewInvitationService(db, repos, members, dispatcher,
		WithTTL(conf.TTL),
		WithTokenGenerator(id.TokenGenerator(conf.TokenLength)),
		WithMetrics(rec),
	)
}
