package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/gofiber/fiber/v2"
)

func setSessionCookie(c *fiber.Ctx, cfg *config.Config, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure || cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure || cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
