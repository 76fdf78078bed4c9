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
	"github.com/go-arcade/roster/pkg/statemachine"
	"gorm.io/datatypes"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusAccepted  InvitationStatus = "accepted"
	InvitationStatusRejected  InvitationStatus = "rejected"
	InvitationStatusExpired   InvitationStatus = "expired"
	InvitationStatusCancelled InvitationStatus = "cancelled"
)

// InvitationTransitions is the invitation lifecycle: every state but pending is terminal.
var InvitationTransitions = statemachine.New[InvitationStatus]().
	Allow(InvitationStatusPending,
		InvitationStatusAccepted,
		InvitationStatusRejected,
		InvitationStatusExpired,
		InvitationStatusCancelled,
	)

// DefaultInvitationTTL is how long an invitation stays pending.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// OrganizationInvitation 组织邀请表
type OrganizationInvitation struct {
	BaseModel
	InvitationId string            `gorm:"column:invitation_id;size:36;uniqueIndex" json:"invitationId"`
	OrgId        string            `gorm:"column:org_id;size:64;index:idx_invitation_org_email" json:"orgId"`
	Email        string            `gorm:"column:email;size:255;index:idx_invitation_org_email" json:"email"`
	Role         role.OrgRole      `gorm:"column:role;size:16" json:"role"`
	Token        string            `gorm:"column:token;size:128;uniqueIndex" json:"-"` // size tracks id.MaxTokenLength
	InvitedBy    string            `gorm:"column:invited_by;size:64" json:"invitedBy"`
	Message      string            `gorm:"column:message;size:1000" json:"message,omitempty"`
	Status       InvitationStatus  `gorm:"column:status;size:16;index" json:"status"`
	ExpiresAt    time.Time         `gorm:"column:expires_at;index" json:"expiresAt"`
	AcceptedAt   *time.Time        `gorm:"column:accepted_at" json:"acceptedAt,omitempty"`
	RejectedAt   *time.Time        `gorm:"column:rejected_at" json:"rejectedAt,omitempty"`
	CancelledAt  *time.Time        `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CancelledBy  string            `gorm:"column:cancelled_by;size:64" json:"cancelledBy,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	// PendingKey is set only while pending; the unique index allows one pending row per (org, email).
	PendingKey *string `gorm:"column:pending_key;size:330;uniqueIndex" json:"-"`
}

func (OrganizationInvitation) TableName() string {
	return "t_organization_invitation"
}

// IsPending reports whether the invitation still awaits a response at now.
// A row whose stored status reads pending but whose expiry has passed is not pending.
func (i *OrganizationInvitation) IsPending(now time.Time) bool {
	return i.Status == InvitationStatusPending && i.ExpiresAt.After(now)
}

// IsTerminal reports whether the stored status admits no further transition.
func (i *OrganizationInvitation) IsTerminal() bool {
	return InvitationTransitions.IsTerminal(i.Status)
}

// PendingKeyFor builds the uniqueness key of a pending invitation.
func PendingKeyFor(orgId, email string) *string {
	key := orgId + ":" + NormalizeEmail(email)
	return &key
}
