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
	"time"

	"github.com/go-arcade/roster/internal/roster/role"
)

// OrganizationMember 组织成员表
// (org_id, user_id) is unique: a role change updates the row in place.
type OrganizationMember struct {
	BaseModel
	OrgId     string       `gorm:"column:org_id;size:64;uniqueIndex:uk_org_user" json:"orgId"`
	UserId    string       `gorm:"column:user_id;size:64;uniqueIndex:uk_org_user;index" json:"userId"`
	Role      role.OrgRole `gorm:"column:role;size:16;index" json:"role"`
	InvitedBy string       `gorm:"column:invited_by;size:64" json:"invitedBy"`
	Status    int          `gorm:"column:status" json:"status"` // 0-inactive, 1-active
	JoinedAt  time.Time    `gorm:"column:joined_at" json:"joinedAt"`
}

func (OrganizationMember) TableName() string {
	return "t_organization_member"
}

// OrganizationMemberStatus 组织成员状态
const (
	OrgMemberStatusInactive = 0
	OrgMemberStatusActive   = 1
)

// ValidMemberStatus reports whether status is one of the membership states.
func ValidMemberStatus(status int) bool {
	return status == OrgMemberStatusActive || status == OrgMemberStatusInactive
}

// IsOwner reports whether the member holds the owner role.
func (m *OrganizationMember) IsOwner() bool {
	return m.Role == role.OrgRoleOwner
}

// IsActive reports whether the membership is active.
func (m *OrganizationMember) IsActive() bool {
	return m.Status == OrgMemberStatusActive
}
