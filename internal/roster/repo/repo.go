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

package repo

import (
	"context"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProviderSet provides all repositories
var ProviderSet = wire.NewSet(NewRepositories)

// Repositories 统一管理所有 repository
type Repositories struct {
	Organization IOrganizationRepository
	User         IUserRepository
	Member       IMemberRepository
	Invitation   IInvitationRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		Organization: NewOrganizationRepo(db),
		User:         NewUserRepo(db),
		Member:       NewMemberRepo(db),
		Invitation:   NewInvitationRepo(db),
	}
}

// AutoMigrate creates or updates every roster table.
func AutoMigrate(ctx context.Context, db database.IDatabase) error {
	return db.Database().WithContext(ctx).AutoMigrate(model.All()...)
}

type baseRepo struct {
	database.IDatabase
}

// conn returns the transaction carried by ctx or the pooled handle.
func (r baseRepo) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.Database())
}
