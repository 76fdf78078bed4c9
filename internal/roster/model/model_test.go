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
	"testing"
	"time"

	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/stretchr/testify/assert"
)

func TestOrganizationInvitation_IsPending(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    InvitationStatus
		expiresAt time.Time
		want      bool
	}{
		{"pending and fresh", InvitationStatusPending, now.Add(time.Hour), true},
		{"pending but expired", InvitationStatusPending, now.Add(-time.Second), false},
		{"pending expiring exactly now", InvitationStatusPending, now, false},
		{"accepted", InvitationStatusAccepted, now.Add(time.Hour), false},
		{"cancelled", InvitationStatusCancelled, now.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &OrganizationInvitation{Status: tt.status, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, inv.IsPending(now))
		})
	}
}

func TestInvitationTransitions(t *testing.T) {
	terminal := []InvitationStatus{
		InvitationStatusAccepted,
		InvitationStatusRejected,
		InvitationStatusExpired,
		InvitationStatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, InvitationTransitions.CanTransition(InvitationStatusPending, s), "pending -> %s", s)
		assert.True(t, InvitationTransitions.IsTerminal(s), "%s is terminal", s)
		for _, to := range append(terminal, InvitationStatusPending) {
			assert.False(t, InvitationTransitions.CanTransition(s, to), "%s -> %s", s, to)
		}
	}
	assert.False(t, (&OrganizationInvitation{Status: InvitationStatusPending}).IsTerminal())
}

func TestPendingKeyFor(t *testing.T) {
	assert.Equal(t, "org-7:alice@example.com", *PendingKeyFor("org-7", "  Alice@Example.com "))
}

func TestOrganizationMember(t *testing.T) {
	m := &OrganizationMember{Role: role.OrgRoleOwner, Status: OrgMemberStatusActive}
	assert.True(t, m.IsOwner())
	assert.True(t, m.IsActive())

	m.Role = role.OrgRoleAdmin
	m.Status = OrgMemberStatusInactive
	assert.False(t, m.IsOwner())
	assert.False(t, m.IsActive())

	assert.True(t, ValidMemberStatus(OrgMemberStatusInactive))
	assert.False(t, ValidMemberStatus(2))
}

func TestOrganization_Label(t *testing.T) {
	assert.Equal(t, "Red Cross", (&Organization{Name: "redcross", DisplayName: "Red Cross"}).Label())
	assert.Equal(t, "redcross", (&Organization{Name: "redcross"}).Label())
}
