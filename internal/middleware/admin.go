package middleware

import (
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired must run after SessionRequired. Both a missing session and a
// non-admin session answer 401, matching the admin API contract.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := services.RequireAdmin(CurrentSession(c)); err != nil {
			return unauthorized(c)
		}
		return c.Next()
	}
}
