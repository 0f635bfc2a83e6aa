package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionResolver turns a verified session id into the current session.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (*services.Session, error)
}

// SessionRequired rejects the request with 401 unless it carries a valid
// session token (cookie or bearer header) backed by an active session row.
func SessionRequired(cfg *config.Config, resolver SessionResolver) fiber.Handler {
	return sessionHandler(cfg, resolver, true)
}

// SessionOptional resolves the session when present and lets anonymous
// requests through. Used by the views that redirect on role.
func SessionOptional(cfg *config.Config, resolver SessionResolver) fiber.Handler {
	return sessionHandler(cfg, resolver, false)
}

func sessionHandler(cfg *config.Config, resolver SessionResolver, required bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: []byte(cfg.SessionSecret)},
		TokenLookup: "header:Authorization,cookie:" + cfg.CookieName,
		// Only defaulted by the library when TokenLookup is left empty.
		AuthScheme: "Bearer",
		SuccessHandler: func(c *fiber.Ctx) error {
			sess, err := resolveSession(c, resolver)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthenticated) {
					slog.Error("session lookup failed", "path", c.Path(), "error", err)
					return fiber.NewError(fiber.StatusServiceUnavailable, services.ErrUpstream.Error())
				}
				if required {
					return unauthorized(c)
				}
				return c.Next()
			}
			c.Locals(sessionKey, sess)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if required {
				return unauthorized(c)
			}
			return c.Next()
		},
	})
}

func resolveSession(c *fiber.Ctx, resolver SessionResolver) (*services.Session, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, services.ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, services.ErrUnauthenticated
	}
	sid, err := services.SessionIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return resolver.GetSession(c.UserContext(), sid)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
