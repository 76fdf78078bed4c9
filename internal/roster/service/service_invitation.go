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
	"fmt"
	"net/mail"
	"sync/atomic"
	"time"

	"github.com/go-arcade/roster/internal/roster/errcode"
	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/notify"
	"github.com/go-arcade/roster/internal/roster/repo"
	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/id"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/metrics"
	"gorm.io/datatypes"
)

// AcceptOutcome tells an accepting caller what happened.
type AcceptOutcome string

const (
	AcceptOutcomeAccepted AcceptOutcome = "accepted"
	// AcceptOutcomeRegistrationRequired means no account exists for the invited email yet.
	AcceptOutcomeRegistrationRequired AcceptOutcome = "registration_required"
)

// AcceptResult is returned by Accept when no error occurred.
type AcceptResult struct {
	Outcome    AcceptOutcome
	Email      string
	Invitation *model.OrganizationInvitation
	Member     *model.OrganizationMember
}

// SendInvitationRequest describes a new invitation.
type SendInvitationRequest struct {
	OrgId     string
	Email     string
	Role      role.OrgRole
	InvitedBy string
	Message   string
	Metadata  map[string]any
}

// InvitationService drives the invitation lifecycle: pending, then exactly one of
// accepted, rejected, expired or cancelled.
type InvitationService struct {
	db          database.IDatabase
	orgs        repo.IOrganizationRepository
	users       repo.IUserRepository
	members     repo.IMemberRepository
	invitations repo.IInvitationRepository
	membership  *MemberService
	dispatcher  notify.Dispatcher
	clock       Clock
	newToken    func() (string, error)
	ttl         atomic.Int64
	metrics     *metrics.InvitationRecorder
}

type InvitationOption func(*InvitationService)

// WithClock replaces the wall clock.
func WithClock(clock Clock) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTokenGenerator replaces the random token source.
func WithTokenGenerator(gen func() (string, error)) InvitationOption {
	return func(s *InvitationService) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// WithTTL sets how long a new invitation stays pending.
func WithTTL(ttl time.Duration) InvitationOption {
	return func(s *InvitationService) {
		s.SetTTL(ttl)
	}
}

func WithMetrics(rec *metrics.InvitationRecorder) InvitationOption {
	return func(s *InvitationService) { s.metrics = rec }
}

func NewInvitationService(
	db database.IDatabase,
	repos *repo.Repositories,
	membership *MemberService,
	dispatcher notify.Dispatcher,
	opts ...InvitationOption,
) *InvitationService {
	s := &InvitationService{
		db:          db,
		orgs:        repos.Organization,
		users:       repos.User,
		members:     repos.Member,
		invitations: repos.Invitation,
		membership:  membership,
		dispatcher:  dispatcher,
		clock:       systemClock,
		newToken:    id.TokenGenerator(id.MinTokenLength),
	}
	s.ttl.Store(int64(model.DefaultInvitationTTL))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InvitationService) now() time.Time {
	return s.clock().UTC()
}

// SetTTL changes the lifetime of invitations created or resent from now on.
// It is safe to call while requests are in flight.
func (s *InvitationService) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl.Store(int64(ttl))
	}
}

// TTL returns the lifetime given to new invitations.
func (s *InvitationService) TTL() time.Duration {
	return time.Duration(s.ttl.Load())
}

// IsPending reports whether inv still awaits a response now.
func (s *InvitationService) IsPending(inv *model.OrganizationInvitation) bool {
	return inv != nil && inv.IsPending(s.now())
}

// Send creates a pending invitation and emails it. The invitation exists only if the
// email was handed to the dispatcher successfully.
func (s *InvitationService) Send(ctx context.Context, req SendInvitationRequest) (*model.OrganizationInvitation, error) {
	email := model.NormalizeEmail(req.Email)
	ctx, span := startSpan(ctx, "send", req.OrgId, email)

	var inv *model.OrganizationInvitation
	err := validateInvitee(email, req.Role)
	if err == nil {
		err = s.db.Transaction(ctx, func(ctx context.Context) error {
			var err error
			inv, err = s.send(ctx, req, email)
			return err
		})
	}
	if err = finish(ctx, span, s.metrics, "send", req.OrgId, email, err); err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("invitation sent", "orgId", inv.OrgId, "invitationId", inv.InvitationId, "role", inv.Role)
	return inv, nil
}

func (s *InvitationService) send(ctx context.Context, req SendInvitationRequest, email string) (*model.OrganizationInvitation, error) {
	org, err := s.orgs.GetOrganization(ctx, req.OrgId)
	if err != nil {
		return nil, notFound(err, errcode.ErrOrganizationNotFound)
	}
	inviter, err := s.users.GetUser(ctx, req.InvitedBy)
	if err != nil {
		return nil, notFound(err, errcode.ErrUserNotFound)
	}
	if err := s.authorizeInvite(ctx, org.OrgId, inviter, req.Role); err != nil {
		return nil, err
	}
	if err := s.ensureNotMember(ctx, org.OrgId, email); err != nil {
		return nil, err
	}

	now := s.now()
	// a lapsed row still holds the pending slot until it is marked expired
	if _, err := s.invitations.ExpireStaleInvitations(ctx, org.OrgId, email, now); err != nil {
		return nil, err
	}
	existing, err := s.invitations.FindPendingInvitation(ctx, org.OrgId, email)
	switch {
	case err == nil && existing.IsPending(now):
		return nil, errcode.ErrDuplicateInvitation
	case err != nil && !database.IsNotFound(err):
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	inv := &model.OrganizationInvitation{
		InvitationId: id.GetUUID(),
		OrgId:        org.OrgId,
		Email:        email,
		Role:         req.Role,
		Token:        token,
		InvitedBy:    inviter.UserId,
		Message:      req.Message,
		Status:       model.InvitationStatusPending,
		ExpiresAt:    now.Add(s.TTL()),
	}
	if len(req.Metadata) > 0 {
		inv.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.invitations.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.dispatch(ctx, inv, org, inviter); err != nil {
		return nil, err
	}
	return inv, nil
}

// validateInvitee accepts a bare address only, no display name.
func validateInvitee(email string, r role.OrgRole) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errcode.ErrInvalidEmail
	}
	if !r.Valid() {
		return errcode.ErrUnknownRole
	}
	return nil
}

// Accept consumes token on behalf of actorId, or of the account registered under the
// invited email when actorId is empty. Without such an account the result asks the
// caller to register first and nothing changes.
func (s *InvitationService) Accept(ctx context.Context, token, actorId string) (*AcceptResult, error) {
	ctx, span := startSpan(ctx, "accept", "", "")

	var (
		result        *AcceptResult
		alreadyMember bool
		orgId, email  string
	)
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		inv, err := s.pendingByToken(ctx, token)
		if err != nil {
			return err
		}
		orgId, email = inv.OrgId, inv.Email

		user, err := s.resolveAcceptingUser(ctx, inv, actorId)
		if err != nil {
			return err
		}
		if user == nil {
			result = &AcceptResult{Outcome: AcceptOutcomeRegistrationRequired, Email: inv.Email, Invitation: inv}
			return nil
		}
		if model.NormalizeEmail(user.Email) != inv.Email {
			return errcode.ErrEmailMismatch
		}

		exists, err := s.members.MemberExists(ctx, inv.OrgId, user.UserId)
		if err != nil {
			return err
		}
		if exists {
			// the user joined by another path; the invitation is spent without granting anything
			if err := s.transition(ctx, inv, model.InvitationStatusExpired, nil); err != nil {
				return err
			}
			alreadyMember = true
			return nil
		}

		member, err := s.membership.addMember(ctx, inv.OrgId, user.UserId, inv.Role, model.OrgMemberStatusActive, inv.InvitedBy)
		if err != nil {
			return err
		}
		now := s.now()
		if err := s.transition(ctx, inv, model.InvitationStatusAccepted, map[string]any{"accepted_at": now}); err != nil {
			return err
		}
		inv.AcceptedAt = &now
		result = &AcceptResult{Outcome: AcceptOutcomeAccepted, Email: inv.Email, Invitation: inv, Member: member}
		return nil
	})
	if err == nil && alreadyMember {
		err = errcode.ErrAlreadyMember
	}
	if err = finish(ctx, span, s.metrics, "accept", orgId, email, err); err != nil {
		return nil, err
	}
	return result, nil
}

// Reject declines token. No membership is touched.
func (s *InvitationService) Reject(ctx context.Context, token string) (*model.OrganizationInvitation, error) {
	ctx, span := startSpan(ctx, "reject", "", "")

	var inv *model.OrganizationInvitation
	var orgId, email string
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.pendingByToken(ctx, token)
		if err != nil {
			return err
		}
		orgId, email = inv.OrgId, inv.Email

		now := s.now()
		if err := s.transition(ctx, inv, model.InvitationStatusRejected, map[string]any{"rejected_at": now}); err != nil {
			return err
		}
		inv.RejectedAt = &now
		return nil
	})
	if err = finish(ctx, span, s.metrics, "reject", orgId, email, err); err != nil {
		return nil, err
	}
	return inv, nil
}

// Cancel withdraws a pending invitation. The actor must be a moderator or above in the
// organization, or a platform admin.
func (s *InvitationService) Cancel(ctx context.Context, invitationId, actorId string) (*model.OrganizationInvitation, error) {
	ctx, span := startSpan(ctx, "cancel", "", "")

	var inv *model.OrganizationInvitation
	var orgId, email string
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invitations.GetInvitation(ctx, invitationId)
		if err != nil {
			return notFound(err, errcode.ErrInvitationNotFound)
		}
		orgId, email = inv.OrgId, inv.Email

		if err := s.authorizeManage(ctx, inv.OrgId, actorId); err != nil {
			return err
		}
		if !inv.IsPending(s.now()) {
			return errcode.ErrInvitationNotPending
		}

		now := s.now()
		fields := map[string]any{"cancelled_at": now, "cancelled_by": actorId}
		if err := s.transition(ctx, inv, model.InvitationStatusCancelled, fields); err != nil {
			return err
		}
		inv.CancelledAt, inv.CancelledBy = &now, actorId
		return nil
	})
	if err = finish(ctx, span, s.metrics, "cancel", orgId, email, err); err != nil {
		return nil, err
	}
	return inv, nil
}

// Resend issues a fresh token and expiry for a pending invitation and emails it again.
// The old token stops working. A failed dispatch leaves the invitation as it was.
func (s *InvitationService) Resend(ctx context.Context, invitationId, actorId string) (*model.OrganizationInvitation, error) {
	ctx, span := startSpan(ctx, "resend", "", "")

	var inv *model.OrganizationInvitation
	var orgId, email string
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invitations.GetInvitation(ctx, invitationId)
		if err != nil {
			return notFound(err, errcode.ErrInvitationNotFound)
		}
		orgId, email = inv.OrgId, inv.Email

		if actorId == inv.InvitedBy {
			// the inviter keeps the right to resend while still an active member
			if _, _, err := s.membership.actorRoles(ctx, inv.OrgId, actorId); err != nil {
				return err
			}
		} else if err := s.authorizeManage(ctx, inv.OrgId, actorId); err != nil {
			return err
		}
		now := s.now()
		if !inv.IsPending(now) {
			return errcode.ErrInvitationNotPending
		}

		token, err := s.newToken()
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		expiresAt := now.Add(s.TTL())
		n, err := s.invitations.UpdateInvitationToken(ctx, inv.InvitationId, token, expiresAt)
		if err != nil {
			return err
		}
		if n == 0 {
			return errcode.ErrInvitationNotPending
		}
		inv.Token, inv.ExpiresAt = token, expiresAt

		org, err := s.orgs.GetOrganization(ctx, inv.OrgId)
		if err != nil {
			return notFound(err, errcode.ErrOrganizationNotFound)
		}
		inviter, err := s.users.GetUser(ctx, inv.InvitedBy)
		if err != nil {
			return notFound(err, errcode.ErrUserNotFound)
		}
		return s.dispatch(ctx, inv, org, inviter)
	})
	if err = finish(ctx, span, s.metrics, "resend", orgId, email, err); err != nil {
		return nil, err
	}
	return inv, nil
}

// CleanupExpiredInvitations marks every lapsed pending invitation expired and returns
// how many rows changed. Running it again right away returns zero.
func (s *InvitationService) CleanupExpiredInvitations(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "cleanup", "", "")
	n, err := s.invitations.ExpireAllStaleInvitations(ctx, s.now())
	if err = finish(ctx, span, s.metrics, "cleanup", "", "", err); err != nil {
		return 0, err
	}
	s.metrics.AddExpired(n)
	if n > 0 {
		log.WithContext(ctx).Infow("expired stale invitations", "count", n)
	}
	return n, nil
}

// ListPending returns the invitations of orgId that are pending now, newest first.
func (s *InvitationService) ListPending(ctx context.Context, orgId string) ([]model.OrganizationInvitation, error) {
	ctx, span := startSpan(ctx, "list_pending", orgId, "")
	invs, err := s.invitations.ListPendingInvitations(ctx, orgId, s.now())
	if err = finish(ctx, span, s.metrics, "list_pending", orgId, "", err); err != nil {
		return nil, err
	}
	return invs, nil
}

// GetByToken looks an invitation up by token whatever its state.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*model.OrganizationInvitation, error) {
	ctx, span := startSpan(ctx, "get_by_token", "", "")
	inv, err := s.invitations.GetInvitationByToken(ctx, token)
	if err = finish(ctx, span, s.metrics, "get_by_token", "", "", notFound(err, errcode.ErrInvalidToken)); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvitationService) pendingByToken(ctx context.Context, token string) (*model.OrganizationInvitation, error) {
	if token == "" {
		return nil, errcode.ErrInvalidToken
	}
	inv, err := s.invitations.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, notFound(err, errcode.ErrInvalidToken)
	}
	if !inv.IsPending(s.now()) {
		return nil, errcode.ErrInvitationNotPending
	}
	return inv, nil
}

// transition moves inv out of pending. Losing a race to another writer reads as not pending.
func (s *InvitationService) transition(ctx context.Context, inv *model.OrganizationInvitation, to model.InvitationStatus, fields map[string]any) error {
	if err := model.InvitationTransitions.Validate(inv.Status, to); err != nil {
		return errcode.ErrInvitationNotPending
	}
	n, err := s.invitations.UpdateInvitationStatus(ctx, inv.InvitationId, to, fields)
	if err != nil {
		return err
	}
	if n == 0 {
		return errcode.ErrInvitationNotPending
	}
	inv.Status = to
	inv.PendingKey = nil
	return nil
}

func (s *InvitationService) resolveAcceptingUser(ctx context.Context, inv *model.OrganizationInvitation, actorId string) (*model.User, error) {
	if actorId != "" {
		user, err := s.users.GetUser(ctx, actorId)
		if err != nil {
			return nil, notFound(err, errcode.ErrUserNotFound)
		}
		return user, nil
	}
	user, err := s.users.GetUserByEmail(ctx, inv.Email)
	if database.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *InvitationService) dispatch(ctx context.Context, inv *model.OrganizationInvitation, org *model.Organization, inviter *model.User) error {
	err := s.dispatcher.SendOrganizationInvite(ctx, notify.Invite{
		Email:        inv.Email,
		Token:        inv.Token,
		Role:         inv.Role,
		Message:      inv.Message,
		ExpiresAt:    inv.ExpiresAt,
		Organization: org,
		InvitedBy:    inviter,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errcode.ErrDispatchFailed, err)
	}
	return nil
}

// authorizeInvite allows platform admins, and active members granting a role below their own.
func (s *InvitationService) authorizeInvite(ctx context.Context, orgId string, inviter *model.User, requested role.OrgRole) error {
	if role.IsPlatformAdmin(inviter.PlatformRole) {
		return nil
	}
	member, err := s.members.GetMember(ctx, orgId, inviter.UserId)
	if err != nil {
		if database.IsNotFound(err) {
			return errcode.ErrPermissionDenied
		}
		return err
	}
	if !member.IsActive() || !role.CanAssign(member.Role, requested) {
		return errcode.ErrPermissionDenied
	}
	return nil
}

// authorizeManage allows platform admins, and moderators or above in orgId.
func (s *InvitationService) authorizeManage(ctx context.Context, orgId, actorId string) error {
	platformAdmin, actorRole, err := s.membership.actorRoles(ctx, orgId, actorId)
	if err != nil {
		return err
	}
	if platformAdmin || role.HasMinimumRole(actorRole, role.OrgRoleModerator) {
		return nil
	}
	return errcode.ErrPermissionDenied
}

func (s *InvitationService) ensureNotMember(ctx context.Context, orgId, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if database.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	exists, err := s.members.MemberExists(ctx, orgId, user.UserId)
	if err != nil {
		return err
	}
	if exists {
		return errcode.ErrAlreadyMember
	}
	return nil
}
