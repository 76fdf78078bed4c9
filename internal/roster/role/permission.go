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

package role

import (
	"maps"
	"slices"
)

// Permission is a capability flag granted by an organization role.
type Permission string

const (
	PermView              Permission = "view"
	PermComment           Permission = "comment"
	PermCreateContent     Permission = "create_content"
	PermModerate          Permission = "moderate"
	PermManageMembers     Permission = "manage_members"
	PermEditOrg           Permission = "edit_org"
	PermManageRoles       Permission = "manage_roles"
	PermDeleteOrg         Permission = "delete_org"
	PermTransferOwnership Permission = "transfer_ownership"
)

// tierPermissions lists what each tier adds on top of the tiers below it.
var tierPermissions = map[OrgRole][]Permission{
	OrgRoleMember:    {PermView, PermComment},
	OrgRoleModerator: {PermCreateContent, PermModerate},
	OrgRoleAdmin:     {PermManageMembers, PermEditOrg, PermManageRoles},
	OrgRoleOwner:     {PermDeleteOrg, PermTransferOwnership},
}

// PermissionSet is a set of capability flags.
type PermissionSet map[Permission]struct{}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the permissions sorted by name.
func (s PermissionSet) Slice() []Permission {
	return slices.Sorted(maps.Keys(s))
}

// PermissionsFor returns the cumulative permissions of r: its own tier plus every tier below.
func PermissionsFor(r OrgRole) (PermissionSet, error) {
	level, err := HierarchyLevel(r)
	if err != nil {
		return nil, err
	}
	set := PermissionSet{}
	for _, tier := range orgRoles {
		if orgLevels[tier] > level {
			break
		}
		for _, p := range tierPermissions[tier] {
			set[p] = struct{}{}
		}
	}
	return set, nil
}

// Can reports whether r grants p. Unknown roles grant nothing.
func Can(r OrgRole, p Permission) bool {
	set, err := PermissionsFor(r)
	if err != nil {
		return false
	}
	return set.Has(p)
}
