package middleware

import (
	"strings"

	"go-wms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole guards a route group behind a role carried in the JWT
// claims. Runs after AuthMiddleware; a request with no claims is
// unauthorized, one without the role is forbidden.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		for _, r := range claims.Roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied: " + role + " role required",
		})
	}
}
