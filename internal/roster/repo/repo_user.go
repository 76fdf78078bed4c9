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
	"fmt"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/pkg/database"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userId string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type UserRepo struct {
	baseRepo
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{baseRepo{IDatabase: db}}
}

// CreateUser 创建用户, the email is stored normalized
func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	if err := r.conn(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %s: %w", user.UserId, err)
	}
	return nil
}

// GetUser 获取用户
func (r *UserRepo) GetUser(ctx context.Context, userId string) (*model.User, error) {
	var user model.User
	if err := r.conn(ctx).Where("user_id = ?", userId).First(&user).Error; err != nil {
		return nil, fmt.Errorf("get user %s: %w", userId, err)
	}
	return &user, nil
}

// GetUserByEmail 根据邮箱获取用户
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.conn(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}
