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
	"time"

	"github.com/go-arcade/roster/internal/roster/errcode"
	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/pkg/database"
)

type IInvitationRepository interface {
	CreateInvitation(ctx context.Context, inv *model.OrganizationInvitation) error
	GetInvitationByToken(ctx context.Context, token string) (*model.OrganizationInvitation, error)
	GetInvitation(ctx context.Context, invitationId string) (*model.OrganizationInvitation, error)
	FindPendingInvitation(ctx context.Context, orgId, email string) (*model.OrganizationInvitation, error)
	ListPendingInvitations(ctx context.Context, orgId string, now time.Time) ([]model.OrganizationInvitation, error)
	ExpireStaleInvitations(ctx context.Context, orgId, email string, now time.Time) (int64, error)
	ExpireAllStaleInvitations(ctx context.Context, now time.Time) (int64, error)
	UpdateInvitationStatus(ctx context.Context, invitationId string, status model.InvitationStatus, fields map[string]any) (int64, error)
	UpdateInvitationToken(ctx context.Context, invitationId, token string, expiresAt time.Time) (int64, error)
}

type InvitationRepo struct {
	baseRepo
}

func NewInvitationRepo(db database.IDatabase) IInvitationRepository {
	return &InvitationRepo{baseRepo{IDatabase: db}}
}

// CreateInvitation 创建邀请
// A second pending row for the same (org, email) fails with ErrDuplicateInvitation.
func (r *InvitationRepo) CreateInvitation(ctx context.Context, inv *model.OrganizationInvitation) error {
	inv.Email = model.NormalizeEmail(inv.Email)
	if inv.Status == model.InvitationStatusPending && inv.PendingKey == nil {
		inv.PendingKey = model.PendingKeyFor(inv.OrgId, inv.Email)
	}
	if err := r.conn(ctx).Create(inv).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return errcode.ErrDuplicateInvitation
		}
		return fmt.Errorf("create invitation for %s: %w", inv.OrgId, err)
	}
	return nil
}

// GetInvitationByToken 根据token获取邀请
func (r *InvitationRepo) GetInvitationByToken(ctx context.Context, token string) (*model.OrganizationInvitation, error) {
	var inv model.OrganizationInvitation
	if err := r.conn(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return &inv, nil
}

// GetInvitation 获取邀请
func (r *InvitationRepo) GetInvitation(ctx context.Context, invitationId string) (*model.OrganizationInvitation, error) {
	var inv model.OrganizationInvitation
	if err := r.conn(ctx).Where("invitation_id = ?", invitationId).First(&inv).Error; err != nil {
		return nil, fmt.Errorf("get invitation %s: %w", invitationId, err)
	}
	return &inv, nil
}

// FindPendingInvitation returns the row whose stored status is pending for (org, email).
// Expiry is not checked here.
func (r *InvitationRepo) FindPendingInvitation(ctx context.Context, orgId, email string) (*model.OrganizationInvitation, error) {
	var inv model.OrganizationInvitation
	err := r.conn(ctx).
		Where("org_id = ? AND email = ? AND status = ?", orgId, model.NormalizeEmail(email), model.InvitationStatusPending).
		First(&inv).Error
	if err != nil {
		return nil, fmt.Errorf("find pending invitation for %s: %w", orgId, err)
	}
	return &inv, nil
}

// ListPendingInvitations 列出组织内未过期的待处理邀请
func (r *InvitationRepo) ListPendingInvitations(ctx context.Context, orgId string, now time.Time) ([]model.OrganizationInvitation, error) {
	var invs []model.OrganizationInvitation
	err := r.conn(ctx).
		Where("org_id = ? AND status = ? AND expires_at > ?", orgId, model.InvitationStatusPending, now).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("list pending invitations of %s: %w", orgId, err)
	}
	return invs, nil
}

// ExpireStaleInvitations marks the lapsed pending rows of one (org, email) pair expired.
func (r *InvitationRepo) ExpireStaleInvitations(ctx context.Context, orgId, email string, now time.Time) (int64, error) {
	res := r.conn(ctx).Model(&model.OrganizationInvitation{}).
		Where("org_id = ? AND email = ? AND status = ? AND expires_at <= ?",
			orgId, model.NormalizeEmail(email), model.InvitationStatusPending, now).
		Updates(expiredFields())
	if res.Error != nil {
		return 0, fmt.Errorf("expire stale invitations of %s: %w", orgId, res.Error)
	}
	return res.RowsAffected, nil
}

// ExpireAllStaleInvitations marks every lapsed pending row expired and returns how many changed.
func (r *InvitationRepo) ExpireAllStaleInvitations(ctx context.Context, now time.Time) (int64, error) {
	res := r.conn(ctx).Model(&model.OrganizationInvitation{}).
		Where("status = ? AND expires_at <= ?", model.InvitationStatusPending, now).
		Updates(expiredFields())
	if res.Error != nil {
		return 0, fmt.Errorf("expire stale invitations: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateInvitationStatus moves a pending invitation to status.
// The update is guarded on the stored status so that only one of two concurrent
// callers can win; the loser sees zero rows affected.
func (r *InvitationRepo) UpdateInvitationStatus(ctx context.Context, invitationId string, status model.InvitationStatus, fields map[string]any) (int64, error) {
	updates := map[string]any{
		"status":      status,
		"pending_key": nil,
	}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.conn(ctx).Model(&model.OrganizationInvitation{}).
		Where("invitation_id = ? AND status = ?", invitationId, model.InvitationStatusPending).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update invitation %s to %s: %w", invitationId, status, res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateInvitationToken rotates the token and pushes the expiry of a pending invitation.
func (r *InvitationRepo) UpdateInvitationToken(ctx context.Context, invitationId, token string, expiresAt time.Time) (int64, error) {
	res := r.conn(ctx).Model(&model.OrganizationInvitation{}).
		Where("invitation_id = ? AND status = ?", invitationId, model.InvitationStatusPending).
		Updates(map[string]any{"token": token, "expires_at": expiresAt})
	if res.Error != nil {
		return 0, fmt.Errorf("update invitation token %s: %w", invitationId, res.Error)
	}
	return res.RowsAffected, nil
}

func expiredFields() map[string]any {
	return map[string]any{
		"status":      model.InvitationStatusExpired,
		"pending_key": nil,
	}
}
