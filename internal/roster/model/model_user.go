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

package model

import (
	"strings"

	"github.com/go-arcade/roster/internal/roster/role"
)

// User 用户表
type User struct {
	BaseModel
	UserId       string            `gorm:"column:user_id;size:64;uniqueIndex" json:"userId"`
	Username     string            `gorm:"column:username;size:128" json:"username"`
	Email        string            `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	PlatformRole role.PlatformRole `gorm:"column:platform_role;size:16;default:user" json:"platformRole"`
}

func (User) TableName() string {
	return "t_user"
}

// NormalizeEmail trims and lower-cases an address so lookups and comparisons agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
