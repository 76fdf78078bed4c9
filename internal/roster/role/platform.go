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
	"fmt"
	"slices"
	"strings"

	"github.com/go-arcade/roster/internal/roster/errcode"
)

// PlatformRole is a role held across the whole platform.
type PlatformRole string

const (
	PlatformRoleUser       PlatformRole = "user"
	PlatformRoleAdmin      PlatformRole = "admin"
	PlatformRoleSuperAdmin PlatformRole = "super_admin"
)

var platformLevels = map[PlatformRole]int{
	PlatformRoleUser:       0,
	PlatformRoleAdmin:      1,
	PlatformRoleSuperAdmin: 2,
}

// ParsePlatformRole parses s, ignoring case and surrounding space.
func ParsePlatformRole(s string) (PlatformRole, error) {
	r := PlatformRole(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := platformLevels[r]; !ok {
		return "", fmt.Errorf("%w: %q", errcode.ErrUnknownRole, s)
	}
	return r, nil
}

func (r PlatformRole) String() string {
	return string(r)
}

// PlatformLevel returns the rank of r.
func PlatformLevel(r PlatformRole) (int, error) {
	level, ok := platformLevels[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errcode.ErrUnknownRole, string(r))
	}
	return level, nil
}

// IsPlatformAdmin reports whether r is admin or super_admin.
func IsPlatformAdmin(r PlatformRole) bool {
	return r == PlatformRoleAdmin || r == PlatformRoleSuperAdmin
}

// AssignablePlatformRoles returns the platform roles assigner may grant.
// admin may only grant user; super_admin may grant every role.
func AssignablePlatformRoles(assigner PlatformRole) []PlatformRole {
	switch assigner {
	case PlatformRoleSuperAdmin:
		return []PlatformRole{PlatformRoleUser, PlatformRoleAdmin, PlatformRoleSuperAdmin}
	case PlatformRoleAdmin:
		return []PlatformRole{PlatformRoleUser}
	default:
		return []PlatformRole{}
	}
}

// CanAssignPlatformRole reports whether assigner may grant target.
func CanAssignPlatformRole(assigner, target PlatformRole) bool {
	return slices.Contains(AssignablePlatformRoles(assigner), target)
}
