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
	"context"

	"github.com/go-arcade/roster/internal/roster/errcode"
	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/repo"
	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/metrics"
)

// MemberService mutates organization memberships. Every mutation keeps at least
// one owner in an organization that has members.
type MemberService struct {
	db      database.IDatabase
	orgs    repo.IOrganizationRepository
	users   repo.IUserRepository
	members repo.IMemberRepository
	clock   Clock
	metrics *metrics.InvitationRecorder
}

type MemberOption func(*MemberService)

func WithMemberClock(clock Clock) MemberOption {
	return func(s *MemberService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithMemberMetrics(rec *metrics.InvitationRecorder) MemberOption {
	return func(s *MemberService) { s.metrics = rec }
}

func NewMemberService(db database.IDatabase, repos *repo.Repositories, opts ...MemberOption) *MemberService {
	s := &MemberService{
		db:      db,
		orgs:    repos.Organization,
		users:   repos.User,
		members: repos.Member,
		clock:   systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrganization creates org and makes ownerId its owner in one transaction.
func (s *MemberService) CreateOrganization(ctx context.Context, org *model.Organization, ownerId string) error {
	ctx, span := startSpan(ctx, "create_organization", org.OrgId, "")
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUser(ctx, ownerId); err != nil {
			return notFound(err, errcode.ErrUserNotFound)
		}
		if err := s.orgs.CreateOrganization(ctx, org); err != nil {
			return err
		}
		_, err := s.insertMember(ctx, org.OrgId, ownerId, role.OrgRoleOwner, model.OrgMemberStatusActive, "")
		return err
	})
	return finish(ctx, span, s.metrics, "create_organization", org.OrgId, "", err)
}

// AddMember adds userId to orgId with the given membership status. An existing membership is an error.
func (s *MemberService) AddMember(ctx context.Context, orgId, userId string, r role.OrgRole, status int, invitedBy string) (*model.OrganizationMember, error) {
	ctx, span := startSpan(ctx, "add_member", orgId, "")
	var member *model.OrganizationMember
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		var err error
		member, err = s.addMember(ctx, orgId, userId, r, status, invitedBy)
		return err
	})
	if err = finish(ctx, span, s.metrics, "add_member", orgId, "", err); err != nil {
		return nil, err
	}
	return member, nil
}

// Join adds userId to orgId as an active plain member.
func (s *MemberService) Join(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	return s.AddMember(ctx, orgId, userId, role.OrgRoleMember, model.OrgMemberStatusActive, "")
}

// Leave removes userId's own membership, subject to the last owner rule.
func (s *MemberService) Leave(ctx context.Context, orgId, userId string) error {
	return s.RemoveMember(ctx, orgId, userId)
}

// addMember runs inside the caller's transaction and returns raw errors.
func (s *MemberService) addMember(ctx context.Context, orgId, userId string, r role.OrgRole, status int, invitedBy string) (*model.OrganizationMember, error) {
	if !r.Valid() {
		return nil, errcode.ErrUnknownRole
	}
	if !model.ValidMemberStatus(status) {
		return nil, errcode.ErrInvalidMemberStatus
	}
	if _, err := s.orgs.GetOrganization(ctx, orgId); err != nil {
		return nil, notFound(err, errcode.ErrOrganizationNotFound)
	}
	if _, err := s.users.GetUser(ctx, userId); err != nil {
		return nil, notFound(err, errcode.ErrUserNotFound)
	}
	if r != role.OrgRoleOwner {
		owners, err := s.members.CountMembersByRole(ctx, orgId, role.OrgRoleOwner)
		if err != nil {
			return nil, err
		}
		if owners == 0 {
			// the first membership of an organization has to be its owner
			return nil, errcode.ErrLastOwner
		}
	}
	return s.insertMember(ctx, orgId, userId, r, status, invitedBy)
}

func (s *MemberService) insertMember(ctx context.Context, orgId, userId string, r role.OrgRole, status int, invitedBy string) (*model.OrganizationMember, error) {
	member := &model.OrganizationMember{
		OrgId:     orgId,
		UserId:    userId,
		Role:      r,
		InvitedBy: invitedBy,
		Status:    status,
		JoinedAt:  s.clock().UTC(),
	}
	if err := s.members.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember deletes the membership. The sole owner cannot be removed.
func (s *MemberService) RemoveMember(ctx context.Context, orgId, userId string) error {
	ctx, span := startSpan(ctx, "remove_member", orgId, "")
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		member, err := s.members.GetMember(ctx, orgId, userId)
		if err != nil {
			return notFound(err, errcode.ErrMemberNotFound)
		}
		if member.IsOwner() {
			if err := s.ensureAnotherOwner(ctx, orgId); err != nil {
				return err
			}
		}
		return s.members.RemoveMember(ctx, orgId, userId)
	})
	return finish(ctx, span, s.metrics, "remove_member", orgId, "", err)
}

// ChangeRole sets userId's role to newRole on behalf of actorId.
// The actor needs a level at least the target's current one and may only grant roles
// below its own; platform admins are exempt. Demoting the sole owner fails first.
func (s *MemberService) ChangeRole(ctx context.Context, orgId, userId string, newRole role.OrgRole, actorId string) error {
	ctx, span := startSpan(ctx, "change_role", orgId, "")
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if !newRole.Valid() {
			return errcode.ErrUnknownRole
		}
		target, err := s.members.GetMember(ctx, orgId, userId)
		if err != nil {
			return notFound(err, errcode.ErrMemberNotFound)
		}
		if target.Role == newRole {
			return nil
		}
		if target.IsOwner() {
			if err := s.ensureAnotherOwner(ctx, orgId); err != nil {
				return err
			}
		}

		platformAdmin, actorRole, err := s.actorRoles(ctx, orgId, actorId)
		if err != nil {
			return err
		}
		if !platformAdmin {
			if !role.HasMinimumRole(actorRole, target.Role) || !role.CanAssign(actorRole, newRole) {
				return errcode.ErrPermissionDenied
			}
		}
		return s.members.UpdateMemberRole(ctx, orgId, userId, newRole)
	})
	return finish(ctx, span, s.metrics, "change_role", orgId, "", err)
}

// TransferOwnership promotes toId to owner and demotes fromId to admin in one transaction.
// toId is added as a member when it is not one yet.
func (s *MemberService) TransferOwnership(ctx context.Context, orgId, fromId, toId string) error {
	ctx, span := startSpan(ctx, "transfer_ownership", orgId, "")
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if fromId == toId {
			return errcode.ErrOwnershipTransferFault
		}
		from, err := s.members.GetMember(ctx, orgId, fromId)
		if err != nil {
			return notFound(err, errcode.ErrOwnershipTransferFault)
		}
		if !from.IsOwner() || !from.IsActive() {
			return errcode.ErrOwnershipTransferFault
		}

		to, err := s.members.GetMember(ctx, orgId, toId)
		switch {
		case database.IsNotFound(err):
			if _, err := s.addMember(ctx, orgId, toId, role.OrgRoleOwner, model.OrgMemberStatusActive, fromId); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if !to.IsOwner() {
				if err := s.members.UpdateMemberRole(ctx, orgId, toId, role.OrgRoleOwner); err != nil {
					return err
				}
			}
			if !to.IsActive() {
				if err := s.members.UpdateMemberStatus(ctx, orgId, toId, model.OrgMemberStatusActive); err != nil {
					return err
				}
			}
		}

		return s.members.UpdateMemberRole(ctx, orgId, fromId, role.OrgRoleAdmin)
	})
	return finish(ctx, span, s.metrics, "transfer_ownership", orgId, "", err)
}

// SetMemberStatus activates or deactivates userId's membership on behalf of actorId.
// The actor must outrank the target unless it is a platform admin. Deactivating an
// owner requires another owner.
func (s *MemberService) SetMemberStatus(ctx context.Context, orgId, userId string, status int, actorId string) error {
	ctx, span := startSpan(ctx, "set_member_status", orgId, "")
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if !model.ValidMemberStatus(status) {
			return errcode.ErrInvalidMemberStatus
		}
		target, err := s.members.GetMember(ctx, orgId, userId)
		if err != nil {
			return notFound(err, errcode.ErrMemberNotFound)
		}
		if target.Status == status {
			return nil
		}
		platformAdmin, actorRole, err := s.actorRoles(ctx, orgId, actorId)
		if err != nil {
			return err
		}
		if !platformAdmin && !role.CanManage(actorRole, target.Role) {
			return errcode.ErrPermissionDenied
		}
		if target.IsOwner() && status == model.OrgMemberStatusInactive {
			if err := s.ensureAnotherOwner(ctx, orgId); err != nil {
				return err
			}
		}
		return s.members.UpdateMemberStatus(ctx, orgId, userId, status)
	})
	return finish(ctx, span, s.metrics, "set_member_status", orgId, "", err)
}

// List returns the memberships of orgId.
func (s *MemberService) List(ctx context.Context, orgId string) ([]model.OrganizationMember, error) {
	ctx, span := startSpan(ctx, "list_members", orgId, "")
	members, err := s.members.ListMembers(ctx, orgId)
	if err = finish(ctx, span, s.metrics, "list_members", orgId, "", err); err != nil {
		return nil, err
	}
	return members, nil
}

// RoleOf returns userId's role in orgId, or ErrMemberNotFound.
func (s *MemberService) RoleOf(ctx context.Context, orgId, userId string) (role.OrgRole, error) {
	member, err := s.members.GetMember(ctx, orgId, userId)
	if err != nil {
		return "", notFound(err, errcode.ErrMemberNotFound)
	}
	return member.Role, nil
}

// ensureAnotherOwner locks the owner rows so concurrent demotions of the last two
// owners serialize on MySQL.
func (s *MemberService) ensureAnotherOwner(ctx context.Context, orgId string) error {
	owners, err := s.members.LockMembersByRole(ctx, orgId, role.OrgRoleOwner)
	if err != nil {
		return err
	}
	if len(owners) <= 1 {
		return errcode.ErrLastOwner
	}
	return nil
}

// actorRoles resolves the actor's platform standing and organization role.
// A non member or inactive member without platform rights is denied.
func (s *MemberService) actorRoles(ctx context.Context, orgId, actorId string) (bool, role.OrgRole, error) {
	actor, err := s.users.GetUser(ctx, actorId)
	if err != nil {
		return false, "", notFound(err, errcode.ErrUserNotFound)
	}
	if role.IsPlatformAdmin(actor.PlatformRole) {
		return true, "", nil
	}
	member, err := s.members.GetMember(ctx, orgId, actorId)
	if err != nil {
		if database.IsNotFound(err) {
			return false, "", errcode.ErrPermissionDenied
		}
		return false, "", err
	}
	if !member.IsActive() {
		return false, "", errcode.ErrPermissionDenied
	}
	return false, member.Role, nil
}
