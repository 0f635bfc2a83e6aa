package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// respondError writes the JSON error body for err. Server-side failures are
// logged and reported with their cause; the client only sees fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error: true, Message: "Validation failed", Fields: verr.Fields,
		})
	}

	status, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		if message == "" {
			message = fallback
		}
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func classify(err error) (int, string) {
	var pub *services.PublicError
	switch {
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrForbidden):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.As(err, &pub) && services.IsInternal(err):
		return fiber.StatusInternalServerError, pub.Message
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrRejected),
		errors.Is(err, services.ErrInvalidPostalCode),
		errors.Is(err, services.ErrNothingToUpdate):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrPostalCodeNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrAdminUndeletable):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrUpstream), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, services.ErrUpstream.Error()
	}
	return fiber.StatusInternalServerError, ""
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}
