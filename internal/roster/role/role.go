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

// Package role holds the organization and platform role hierarchies.
// Both tables are fixed at compile time; every "can X manage Y" check in roster goes through them.
package role

import (
	"encoding"
	"fmt"
	"slices"
	"strings"

	"github.com/go-arcade/roster/internal/roster/errcode"
)

// OrgRole is a role held within one organization.
type OrgRole string

const (
	OrgRoleMember    OrgRole = "member"
	OrgRoleModerator OrgRole = "moderator"
	OrgRoleAdmin     OrgRole = "admin"
	OrgRoleOwner     OrgRole = "owner"
)

// orgLevels must stay strictly increasing in the order of orgRoles.
var orgLevels = map[OrgRole]int{
	OrgRoleMember:    1,
	OrgRoleModerator: 2,
	OrgRoleAdmin:     3,
	OrgRoleOwner:     4,
}

var orgRoles = []OrgRole{OrgRoleMember, OrgRoleModerator, OrgRoleAdmin, OrgRoleOwner}

var (
	_ encoding.TextMarshaler   = OrgRole("")
	_ encoding.TextUnmarshaler = (*OrgRole)(nil)
)

// OrgRoles returns every organization role, lowest first.
func OrgRoles() []OrgRole {
	return slices.Clone(orgRoles)
}

// ParseOrgRole parses s, ignoring case and surrounding space.
func ParseOrgRole(s string) (OrgRole, error) {
	r := OrgRole(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := orgLevels[r]; !ok {
		return "", fmt.Errorf("%w: %q", errcode.ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the fixed organization roles.
func (r OrgRole) Valid() bool {
	_, ok := orgLevels[r]
	return ok
}

func (r OrgRole) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r OrgRole) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", errcode.ErrUnknownRole, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *OrgRole) UnmarshalText(text []byte) error {
	parsed, err := ParseOrgRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// HierarchyLevel returns the rank of r, failing with ErrUnknownRole outside the fixed set.
func HierarchyLevel(r OrgRole) (int, error) {
	level, ok := orgLevels[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errcode.ErrUnknownRole, string(r))
	}
	return level, nil
}

// HasMinimumRole reports whether actual ranks at or above required.
// Unknown roles never satisfy a requirement.
func HasMinimumRole(actual, required OrgRole) bool {
	a, err := HierarchyLevel(actual)
	if err != nil {
		return false
	}
	r, err := HierarchyLevel(required)
	if err != nil {
		return false
	}
	return a >= r
}

// AvailableRolesForAssignment returns the roles ranked strictly below assigner, lowest first.
// An empty or unknown assigner, meaning no role in the organization, gets none.
func AvailableRolesForAssignment(assigner OrgRole) []OrgRole {
	level, err := HierarchyLevel(assigner)
	if err != nil {
		return []OrgRole{}
	}
	roles := make([]OrgRole, 0, len(orgRoles))
	for _, r := range orgRoles {
		if orgLevels[r] < level {
			roles = append(roles, r)
		}
	}
	return roles
}

// CanAssign reports whether assigner may grant target.
func CanAssign(assigner, target OrgRole) bool {
	return slices.Contains(AvailableRolesForAssignment(assigner), target)
}

// CanManage reports whether actor outranks target.
func CanManage(actor, target OrgRole) bool {
	a, err := HierarchyLevel(actor)
	if err != nil {
		return false
	}
	t, err := HierarchyLevel(target)
	if err != nil {
		return false
	}
	return a > t
}
