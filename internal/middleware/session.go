package middleware

import (
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// CurrentSession returns the session resolved for this request, or nil.
func CurrentSession(c *fiber.Ctx) *services.Session {
	if sess, ok := c.Locals(sessionKey).(*services.Session); ok {
		return sess
	}
	return nil
}
