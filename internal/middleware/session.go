// session.go
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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/services"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

const userKey = "user"

// CredentialsFrom reads the session cookie and bearer token of a request
func CredentialsFrom(c *fiber.Ctx) services.Credentials {
	creds := services.Credentials{Cookie: c.Cookies(SessionCookie)}
	if auth := c.Get(fiber.HeaderAuthorization); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		creds.BearerToken = strings.TrimSpace(auth[7:])
	}
	return creds
}

// Session resolves the request's user once and stores it for later handlers.
// It never fails the request; anonymous requests carry a nil user.
func Session(resolver *services.SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user := resolver.Resolve(c.UserContext(), CredentialsFrom(c)); user != nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by Session, or nil
func CurrentUser(c *fiber.Ctx) *models.SessionUser {
	user, _ := c.Locals(userKey).(*models.SessionUser)
	return user
}

// SetUser stores user on the request
func SetUser(c *fiber.Ctx, user *models.SessionUser) {
	c.Locals(userKey, user)
}
