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
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/notify"
	"github.com/go-arcade/roster/internal/roster/repo"
	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/database/dbtest"
	"github.com/go-arcade/roster/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db          database.IDatabase
	repos       *repo.Repositories
	rec         *metrics.InvitationRecorder
	members     *MemberService
	invitations *InvitationService

	mu          sync.Mutex
	now         time.Time
	sent        []notify.Invite
	dispatchErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: epoch}
	f.db = dbtest.Open(t, model.All()...)
	f.repos = repo.NewRepositories(f.db)
	f.rec = metrics.NewInvitationRecorderFor(prometheus.NewRegistry())
	f.members = NewMemberService(f.db, f.repos, WithMemberClock(f.clock), WithMemberMetrics(f.rec))
	f.invitations = NewInvitationService(f.db, f.repos, f.members, notify.DispatcherFunc(f.dispatch),
		WithClock(f.clock),
		WithMetrics(f.rec),
	)
	return f
}

// swapInvitationRepo rebuilds the invitation service on top of a wrapped invitation repository.
func (f *fixture) swapInvitationRepo(wrap func(repo.IInvitationRepository) repo.IInvitationRepository) {
	repos := *f.repos
	repos.Invitation = wrap(f.repos.Invitation)
	f.invitations = NewInvitationService(f.db, &repos, f.members, notify.DispatcherFunc(f.dispatch),
		WithClock(f.clock),
		WithMetrics(f.rec),
	)
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fixture) failDispatch(err error) {
	f.mu.Lock()
	f.dispatchErr = err
	f.mu.Unlock()
}

func (f *fixture) dispatch(_ context.Context, invite notify.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.sent = append(f.sent, invite)
	return nil
}

func (f *fixture) lastSent(t *testing.T) notify.Invite {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fixture) user(t *testing.T, userId, email string, platform role.PlatformRole) *model.User {
	t.Helper()
	u := &model.User{UserId: userId, Username: userId, Email: email, PlatformRole: platform}
	require.NoError(t, f.repos.User.CreateUser(context.Background(), u))
	return u
}

// org creates orgId owned by a fresh user u-owner.
func (f *fixture) org(t *testing.T, orgId string) *model.Organization {
	t.Helper()
	f.user(t, "u-owner", "owner@example.com", role.PlatformRoleUser)
	o := &model.Organization{OrgId: orgId, Name: "acme-" + orgId, DisplayName: "Acme " + orgId}
	require.NoError(t, f.members.CreateOrganization(context.Background(), o, "u-owner"))
	return o
}

func (f *fixture) member(t *testing.T, orgId, userId string, r role.OrgRole) {
	t.Helper()
	_, err := f.members.AddMember(context.Background(), orgId, userId, r, model.OrgMemberStatusActive, "u-owner")
	require.NoError(t, err)
}

// deactivate flips userId's membership in orgId to inactive behind the service's back.
func (f *fixture) deactivate(t *testing.T, orgId, userId string) {
	t.Helper()
	require.NoError(t, f.repos.Member.UpdateMemberStatus(context.Background(), orgId, userId, model.OrgMemberStatusInactive))
}
