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

	"github.com/go-arcade/roster/internal/roster/errcode"
	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/go-arcade/roster/pkg/database"
	"gorm.io/gorm/clause"
)

type IMemberRepository interface {
	GetMember(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error)
	ListMembers(ctx context.Context, orgId string) ([]model.OrganizationMember, error)
	ListUserOrganizations(ctx context.Context, userId string) ([]model.OrganizationMember, error)
	AddMember(ctx context.Context, member *model.OrganizationMember) error
	UpdateMemberRole(ctx context.Context, orgId, userId string, r role.OrgRole) error
	UpdateMemberStatus(ctx context.Context, orgId, userId string, status int) error
	RemoveMember(ctx context.Context, orgId, userId string) error
	CountMembersByRole(ctx context.Context, orgId string, r role.OrgRole) (int64, error)
	LockMembersByRole(ctx context.Context, orgId string, r role.OrgRole) ([]model.OrganizationMember, error)
	MemberExists(ctx context.Context, orgId, userId string) (bool, error)
}

type MemberRepo struct {
	baseRepo
}

func NewMemberRepo(db database.IDatabase) IMemberRepository {
	return &MemberRepo{baseRepo{IDatabase: db}}
}

// GetMember 获取组织成员
func (r *MemberRepo) GetMember(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	var member model.OrganizationMember
	err := r.conn(ctx).Where("org_id = ? AND user_id = ?", orgId, userId).First(&member).Error
	if err != nil {
		return nil, fmt.Errorf("get member %s/%s: %w", orgId, userId, err)
	}
	return &member, nil
}

// ListMembers 列出组织成员
func (r *MemberRepo) ListMembers(ctx context.Context, orgId string) ([]model.OrganizationMember, error) {
	var members []model.OrganizationMember
	err := r.conn(ctx).Where("org_id = ?", orgId).Order("id").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", orgId, err)
	}
	return members, nil
}

// ListUserOrganizations 列出用户所在的组织
func (r *MemberRepo) ListUserOrganizations(ctx context.Context, userId string) ([]model.OrganizationMember, error) {
	var members []model.OrganizationMember
	err := r.conn(ctx).Where("user_id = ?", userId).Order("id").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("list organizations of %s: %w", userId, err)
	}
	return members, nil
}

// AddMember 添加组织成员, a second row for the same pair fails with ErrMemberExists
func (r *MemberRepo) AddMember(ctx context.Context, member *model.OrganizationMember) error {
	if err := r.conn(ctx).Create(member).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return errcode.ErrMemberExists
		}
		return fmt.Errorf("add member %s/%s: %w", member.OrgId, member.UserId, err)
	}
	return nil
}

// UpdateMemberRole 更新组织成员角色
func (r *MemberRepo) UpdateMemberRole(ctx context.Context, orgId, userId string, newRole role.OrgRole) error {
	res := r.conn(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Update("role", newRole)
	if res.Error != nil {
		return fmt.Errorf("update member role %s/%s: %w", orgId, userId, res.Error)
	}
	if res.RowsAffected == 0 {
		return errcode.ErrMemberNotFound
	}
	return nil
}

// UpdateMemberStatus 更新组织成员状态
func (r *MemberRepo) UpdateMemberStatus(ctx context.Context, orgId, userId string, status int) error {
	res := r.conn(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update member status %s/%s: %w", orgId, userId, res.Error)
	}
	if res.RowsAffected == 0 {
		return errcode.ErrMemberNotFound
	}
	return nil
}

// RemoveMember 移除组织成员
func (r *MemberRepo) RemoveMember(ctx context.Context, orgId, userId string) error {
	res := r.conn(ctx).Where("org_id = ? AND user_id = ?", orgId, userId).
		Delete(&model.OrganizationMember{})
	if res.Error != nil {
		return fmt.Errorf("remove member %s/%s: %w", orgId, userId, res.Error)
	}
	if res.RowsAffected == 0 {
		return errcode.ErrMemberNotFound
	}
	return nil
}

// CountMembersByRole 统计组织内某角色成员数
func (r *MemberRepo) CountMembersByRole(ctx context.Context, orgId string, rl role.OrgRole) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND role = ?", orgId, rl).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count %s members of %s: %w", rl, orgId, err)
	}
	return count, nil
}

// LockMembersByRole reads the members holding rl with SELECT ... FOR UPDATE.
// It only locks inside a transaction; SQLite ignores the locking clause.
func (r *MemberRepo) LockMembersByRole(ctx context.Context, orgId string, rl role.OrgRole) ([]model.OrganizationMember, error) {
	var members []model.OrganizationMember
	err := r.conn(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("org_id = ? AND role = ?", orgId, rl).
		Order("id").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("lock %s members of %s: %w", rl, orgId, err)
	}
	return members, nil
}

// MemberExists 检查成员是否存在
func (r *MemberRepo) MemberExists(ctx context.Context, orgId, userId string) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check member %s/%s: %w", orgId, userId, err)
	}
	return count > 0, nil
}
