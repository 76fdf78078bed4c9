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
	"testing"
	"time"

	"github.com/go-arcade/roster/internal/roster/errcode"
	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/database/dbtest"
	"github.com/go-arcade/roster/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) (*Repositories, database.IDatabase) {
	t.Helper()
	db := dbtest.Open(t, model.All()...)
	return NewRepositories(db), db
}

func mustToken() string {
	token, err := id.SecureToken(id.MinTokenLength)
	if err != nil {
		panic(err)
	}
	return token
}

func pendingInvitation(orgId, email string, expiresAt time.Time) *model.OrganizationInvitation {
	return &model.OrganizationInvitation{
		InvitationId: id.GetUUID(),
		OrgId:        orgId,
		Email:        email,
		Role:         role.OrgRoleMember,
		Token:        mustToken(),
		InvitedBy:    "u-owner",
		Status:       model.InvitationStatusPending,
		ExpiresAt:    expiresAt,
	}
}

func TestInvitationRepo_CreateAndGet(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := pendingInvitation("org-7", "  Alice@Example.com ", now.Add(time.Hour))
	require.NoError(t, repos.Invitation.CreateInvitation(ctx, inv))
	assert.Equal(t, "alice@example.com", inv.Email)
	require.NotNil(t, inv.PendingKey)
	assert.Equal(t, "org-7:alice@example.com", *inv.PendingKey)

	byToken, err := repos.Invitation.GetInvitationByToken(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, inv.InvitationId, byToken.InvitationId)

	byId, err := repos.Invitation.GetInvitation(ctx, inv.InvitationId)
	require.NoError(t, err)
	assert.Equal(t, inv.Token, byId.Token)

	_, err = repos.Invitation.GetInvitationByToken(ctx, "missing")
	assert.True(t, database.IsNotFound(err))
}

func TestInvitationRepo_DuplicatePending(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repos.Invitation.CreateInvitation(ctx, pendingInvitation("org-7", "bob@example.com", now.Add(time.Hour))))
	err := repos.Invitation.CreateInvitation(ctx, pendingInvitation("org-7", "BOB@example.com", now.Add(time.Hour)))
	assert.ErrorIs(t, err, errcode.ErrDuplicateInvitation)

	// same email in another organization is fine
	require.NoError(t, repos.Invitation.CreateInvitation(ctx, pendingInvitation("org-8", "bob@example.com", now.Add(time.Hour))))
}

func TestInvitationRepo_TerminalFreesPendingSlot(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := pendingInvitation("org-7", "carol@example.com", now.Add(time.Hour))
	require.NoError(t, repos.Invitation.CreateInvitation(ctx, first))

	n, err := repos.Invitation.UpdateInvitationStatus(ctx, first.InvitationId, model.InvitationStatusRejected,
		map[string]any{"rejected_at": now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := repos.Invitation.GetInvitation(ctx, first.InvitationId)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusRejected, stored.Status)
	assert.Nil(t, stored.PendingKey)
	require.NotNil(t, stored.RejectedAt)

	require.NoError(t, repos.Invitation.CreateInvitation(ctx, pendingInvitation("org-7", "carol@example.com", now.Add(time.Hour))))
}

func TestInvitationRepo_UpdateStatusOnlyFromPending(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := pendingInvitation("org-7", "dave@example.com", now.Add(time.Hour))
	require.NoError(t, repos.Invitation.CreateInvitation(ctx, inv))

	n, err := repos.Invitation.UpdateInvitationStatus(ctx, inv.InvitationId, model.InvitationStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Invitation.UpdateInvitationStatus(ctx, inv.InvitationId, model.InvitationStatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	stored, err := repos.Invitation.GetInvitation(ctx, inv.InvitationId)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusAccepted, stored.Status)
}

func TestInvitationRepo_ExpireStale(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := pendingInvitation("org-7", "erin@example.com", now.Add(-8*24*time.Hour))
	fresh := pendingInvitation("org-7", "frank@example.com", now.Add(24*time.Hour))
	otherOrg := pendingInvitation("org-9", "erin@example.com", now.Add(-time.Hour))
	for _, inv := range []*model.OrganizationInvitation{stale, fresh, otherOrg} {
		require.NoError(t, repos.Invitation.CreateInvitation(ctx, inv))
	}

	n, err := repos.Invitation.ExpireStaleInvitations(ctx, "org-7", "erin@example.com", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Invitation.ExpireAllStaleInvitations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the org-9 row is still stale")

	n, err = repos.Invitation.ExpireAllStaleInvitations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	pending, err := repos.Invitation.ListPendingInvitations(ctx, "org-7", now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, fresh.InvitationId, pending[0].InvitationId)
}

func TestInvitationRepo_FindPendingAndRotateToken(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := pendingInvitation("org-7", "gina@example.com", now.Add(time.Hour))
	require.NoError(t, repos.Invitation.CreateInvitation(ctx, inv))

	found, err := repos.Invitation.FindPendingInvitation(ctx, "org-7", "Gina@Example.com")
	require.NoError(t, err)
	assert.Equal(t, inv.InvitationId, found.InvitationId)

	newToken := mustToken()
	n, err := repos.Invitation.UpdateInvitationToken(ctx, inv.InvitationId, newToken, now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repos.Invitation.GetInvitationByToken(ctx, inv.Token)
	assert.True(t, database.IsNotFound(err))
	rotated, err := repos.Invitation.GetInvitationByToken(ctx, newToken)
	require.NoError(t, err)
	assert.True(t, rotated.ExpiresAt.After(now.Add(47*time.Hour)))
}

func TestMemberRepo(t *testing.T) {
	repos, db := newRepos(t)
	ctx := context.Background()

	owner := &model.OrganizationMember{OrgId: "org-7", UserId: "u-owner", Role: role.OrgRoleOwner, Status: model.OrgMemberStatusActive, JoinedAt: time.Now().UTC()}
	alice := &model.OrganizationMember{OrgId: "org-7", UserId: "u-alice", Role: role.OrgRoleMember, Status: model.OrgMemberStatusActive, JoinedAt: time.Now().UTC()}
	require.NoError(t, repos.Member.AddMember(ctx, owner))
	require.NoError(t, repos.Member.AddMember(ctx, alice))

	err := repos.Member.AddMember(ctx, &model.OrganizationMember{OrgId: "org-7", UserId: "u-alice", Role: role.OrgRoleAdmin})
	assert.ErrorIs(t, err, errcode.ErrMemberExists)

	exists, err := repos.Member.MemberExists(ctx, "org-7", "u-alice")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repos.Member.UpdateMemberRole(ctx, "org-7", "u-alice", role.OrgRoleModerator))
	got, err := repos.Member.GetMember(ctx, "org-7", "u-alice")
	require.NoError(t, err)
	assert.Equal(t, role.OrgRoleModerator, got.Role)

	assert.ErrorIs(t, repos.Member.UpdateMemberRole(ctx, "org-7", "u-nobody", role.OrgRoleAdmin), errcode.ErrMemberNotFound)

	require.NoError(t, repos.Member.UpdateMemberStatus(ctx, "org-7", "u-alice", model.OrgMemberStatusInactive))
	got, err = repos.Member.GetMember(ctx, "org-7", "u-alice")
	require.NoError(t, err)
	assert.False(t, got.IsActive())
	assert.ErrorIs(t, repos.Member.UpdateMemberStatus(ctx, "org-7", "u-nobody", model.OrgMemberStatusActive), errcode.ErrMemberNotFound)

	owners, err := repos.Member.CountMembersByRole(ctx, "org-7", role.OrgRoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), owners)

	err = db.Transaction(ctx, func(ctx context.Context) error {
		locked, err := repos.Member.LockMembersByRole(ctx, "org-7", role.OrgRoleOwner)
		if err != nil {
			return err
		}
		require.Len(t, locked, 1)
		assert.Equal(t, "u-owner", locked[0].UserId)
		return nil
	})
	require.NoError(t, err)

	members, err := repos.Member.ListMembers(ctx, "org-7")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	orgs, err := repos.Member.ListUserOrganizations(ctx, "u-alice")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "org-7", orgs[0].OrgId)

	require.NoError(t, repos.Member.RemoveMember(ctx, "org-7", "u-alice"))
	assert.ErrorIs(t, repos.Member.RemoveMember(ctx, "org-7", "u-alice"), errcode.ErrMemberNotFound)
	_, err = repos.Member.GetMember(ctx, "org-7", "u-alice")
	assert.True(t, database.IsNotFound(err))
}

func TestUserAndOrganizationRepo(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Organization.CreateOrganization(ctx, &model.Organization{OrgId: "org-7", Name: "acme"}))
	org, err := repos.Organization.GetOrganization(ctx, "org-7")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Name)

	require.NoError(t, repos.User.CreateUser(ctx, &model.User{UserId: "u-alice", Username: "alice", Email: "Alice@Example.com"}))
	user, err := repos.User.GetUserByEmail(ctx, "alice@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", user.UserId)
	assert.Equal(t, role.PlatformRoleUser, user.PlatformRole)

	_, err = repos.User.GetUser(ctx, "u-missing")
	assert.True(t, database.IsNotFound(err))
}

func TestRepositories_ShareTransaction(t *testing.T) {
	repos, db := newRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := pendingInvitation("org-7", "hank@example.com", now.Add(time.Hour))
	err := db.Transaction(ctx, func(ctx context.Context) error {
		if err := repos.Invitation.CreateInvitation(ctx, inv); err != nil {
			return err
		}
		if err := repos.Member.AddMember(ctx, &model.OrganizationMember{OrgId: "org-7", UserId: "u-hank", Role: role.OrgRoleMember}); err != nil {
			return err
		}
		return errcode.ErrOperationFailed
	})
	assert.ErrorIs(t, err, errcode.ErrOperationFailed)

	_, err = repos.Invitation.GetInvitation(ctx, inv.InvitationId)
	assert.True(t, database.IsNotFound(err))
	exists, err := repos.Member.MemberExists(ctx, "org-7", "u-hank")
	require.NoError(t, err)
	assert.False(t, exists)
}
