package handlers

import (
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	cfg          *config.Config
	authService  *services.AuthService
	registration *services.RegistrationService
}

func NewAuthHandler(cfg *config.Config, authService *services.AuthService, registration *services.RegistrationService) *AuthHandler {
	return &AuthHandler{cfg: cfg, authService: authService, registration: registration}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := h.registration.Register(c.UserContext(), validation.RegistrationInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Zipcode:              req.Zipcode,
		City:                 req.City,
		State:                req.State,
	}, clientMeta(c))
	if err != nil {
		return respondError(c, err, services.MsgSignUpFailed)
	}

	setSessionCookie(c, h.cfg, res.Issued.Token, res.Issued.Session.ExpiresAt)
	return c.Status(fiber.StatusCreated).JSON(authResponse(res))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := h.registration.Login(c.UserContext(), validation.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, clientMeta(c))
	if err != nil {
		return respondError(c, err, services.MsgSignInFailed)
	}

	setSessionCookie(c, h.cfg, res.Issued.Token, res.Issued.Session.ExpiresAt)
	return c.JSON(authResponse(res))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if err := services.RequireSession(sess); err != nil {
		return respondError(c, err, "")
	}

	if err := h.authService.SignOut(c.UserContext(), sess.ID); err != nil {
		return respondError(c, err, "Failed to logout")
	}

	clearSessionCookie(c, h.cfg)
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if err := services.RequireSession(sess); err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(dto.SessionResponse{
		User:      services.SessionUser(sess),
		ExpiresAt: sess.ExpiresAt,
		Landing:   services.LandingFor(sess),
	})
}

func authResponse(res *services.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Redirect:  res.Redirect,
		ExpiresAt: res.Issued.Session.ExpiresAt,
		User:      services.SessionUser(res.Issued.Session),
	}
}

func clientMeta(c *fiber.Ctx) services.ClientMeta {
	return services.ClientMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}
