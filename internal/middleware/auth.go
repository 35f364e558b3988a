package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/policy"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

// RequireUser rejects anonymous requests with 401
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return types.Unauthorized("Authentication required")
		}
		return c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and users below minimum with 403
func RequireRole(minimum models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return types.Unauthorized("Authentication required")
		}
		if !policy.HasRoleLevel(user, minimum) {
			return types.Forbidden(string(minimum) + " role required")
		}
		return c.Next()
	}
}

// NoStore marks responses as uncacheable
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Next()
	}
}
