// roles.go
//
// Rental marketplace backend for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-rentals.
// jam-build-rentals is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-rentals is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-rentals.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package policy holds the static role hierarchy and the permission predicates
// derived from it. Every predicate is false for a nil user.
package policy

import "github.com/localnerve/jam-build-rentals/internal/models"

var levels = map[models.Role]int{
	models.RoleTenant:     1,
	models.RoleLandlord:   2,
	models.RoleAdmin:      3,
	models.RoleSuperAdmin: 4,
}

// Level returns the position of role in the hierarchy. Unknown roles are 0.
func Level(role models.Role) int {
	return levels[role]
}

// HasRole reports whether user holds exactly role
func HasRole(user *models.SessionUser, role models.Role) bool {
	return user != nil && user.Role == role
}

// HasAnyRole reports whether user holds one of roles
func HasAnyRole(user *models.SessionUser, roles ...models.Role) bool {
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}

// HasRoleLevel reports whether user's role is at or above minimum
func HasRoleLevel(user *models.SessionUser, minimum models.Role) bool {
	if user == nil {
		return false
	}
	return Level(user.Role) >= Level(minimum)
}

// CanManageProperties allows landlords and above to list properties
func CanManageProperties(user *models.SessionUser) bool {
	return HasRoleLevel(user, models.RoleLandlord)
}

// CanManageUsers allows admins and above to manage roles
func CanManageUsers(user *models.SessionUser) bool {
	return HasRoleLevel(user, models.RoleAdmin)
}

// CanApproveApplications allows landlords and above to review applications
func CanApproveApplications(user *models.SessionUser) bool {
	return HasRoleLevel(user, models.RoleLandlord)
}

// CanUpdateApplicationStatus gates the admin status override
func CanUpdateApplicationStatus(user *models.SessionUser) bool {
	return HasRoleLevel(user, models.RoleAdmin)
}

// CanGrant reports whether actor may assign role to someone. Admins cannot hand
// out a role above their own.
func CanGrant(actor *models.SessionUser, role models.Role) bool {
	if !CanManageUsers(actor) {
		return false
	}
	if Level(role) == 0 {
		return false
	}
	return Level(role) <= Level(actor.Role)
}
