package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ViewHandler backs the page routes. Each page either renders its payload
// or sends the client to the one landing page its session allows.
type ViewHandler struct {
	userService  *services.UserService
	adminService *services.AdminService
}

func NewViewHandler(userService *services.UserService, adminService *services.AdminService) *ViewHandler {
	return &ViewHandler{userService: userService, adminService: adminService}
}

func (h *ViewHandler) Home(c *fiber.Ctx) error {
	return c.Redirect(services.LandingFor(middleware.CurrentSession(c)), fiber.StatusSeeOther)
}

func (h *ViewHandler) Login(c *fiber.Ctx) error {
	return h.form(c, "login")
}

func (h *ViewHandler) Register(c *fiber.Ctx) error {
	return h.form(c, "register")
}

// form short-circuits signed-in users before the page is served.
func (h *ViewHandler) form(c *fiber.Ctx, view string) error {
	if sess := middleware.CurrentSession(c); sess != nil {
		return c.Redirect(services.LandingFor(sess), fiber.StatusSeeOther)
	}
	return c.JSON(dto.FormViewResponse{View: view})
}

func (h *ViewHandler) Dashboard(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if landing := services.LandingFor(sess); landing != services.PathDashboard {
		return c.Redirect(landing, fiber.StatusSeeOther)
	}

	view, err := h.userService.Dashboard(c.UserContext(), sess)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			return c.Redirect(services.PathLogin, fiber.StatusSeeOther)
		}
		return respondError(c, err, "Failed to load dashboard")
	}
	return c.JSON(view)
}

func (h *ViewHandler) Admin(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if landing := services.LandingFor(sess); landing != services.PathAdmin {
		return c.Redirect(landing, fiber.StatusSeeOther)
	}

	users, err := h.adminService.List(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}
	return c.JSON(dto.AdminViewResponse{
		Admin: services.SessionUser(sess),
		Users: users,
	})
}
