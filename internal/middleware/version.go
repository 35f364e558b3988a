package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

// APIVersion is the version of the HTTP surface served
const APIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores it in context and
// rejects requests for a major version the service does not serve
func VersionMiddleware() fiber.Handler {
	major := majorOf(APIVersion)
	return func(c *fiber.Ctx) error {
		version := strings.TrimPrefix(strings.TrimSpace(c.Get("X-Api-Version", APIVersion)), "v")

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = APIVersion
		}

		if majorOf(version) != major {
			return types.InvalidInput("Unsupported API version " + version)
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", APIVersion)

		return c.Next()
	}
}

func majorOf(version string) string {
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}
