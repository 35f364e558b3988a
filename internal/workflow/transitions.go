// transitions.go
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

// Package workflow holds the application lifecycle rules: which status changes are
// legal, who may make them, and how a submission is frozen into a snapshot.
// Nothing here touches the database.
package workflow

import (
	"fmt"
	"strings"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/policy"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

// Transition names, used for metrics and logs
const (
	TransitionSubmit   = "submit"
	TransitionWithdraw = "withdraw"
	TransitionAdmin    = "admin_update"
)

// AuthorizeOwner allows only the application's owner through
func AuthorizeOwner(actor *models.SessionUser, app *models.Application) error {
	if actor == nil {
		return types.Unauthorized("Authentication required")
	}
	if !policy.IsOwner(actor, app) {
		return types.Forbidden("You do not own this application")
	}
	return nil
}

// AuthorizeStatusUpdate allows admins and super admins through
func AuthorizeStatusUpdate(actor *models.SessionUser) error {
	if actor == nil {
		return types.Unauthorized("Authentication required")
	}
	if !policy.CanUpdateApplicationStatus(actor) {
		return types.Forbidden("Admin role required")
	}
	return nil
}

// CheckSubmit allows a submit from any status except submitted
func CheckSubmit(current models.Status) error {
	if current == models.StatusSubmitted {
		return types.Conflict("Application already submitted")
	}
	return nil
}

// CanWithdraw reports whether an owner may withdraw from current
func CanWithdraw(current models.Status) bool {
	return current == models.StatusSubmitted || current == models.StatusUnderReview
}

// CheckWithdraw allows a withdraw only from submitted or under_review
func CheckWithdraw(current models.Status) error {
	if !CanWithdraw(current) {
		return types.InvalidTransition(fmt.Sprintf("Cannot withdraw an application with status '%s'", current))
	}
	return nil
}

// ParseAdminStatus validates the target of an admin status update
func ParseAdminStatus(value string) (models.Status, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", types.InvalidInput("status is required")
	}
	status, ok := models.ParseStatus(value)
	if !ok {
		return "", types.InvalidInput(fmt.Sprintf("Invalid status '%s'", value))
	}
	return status, nil
}
