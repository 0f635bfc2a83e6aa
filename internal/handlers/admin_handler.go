package handlers

import (
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.List(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}
	return c.JSON(users)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, services.ErrUserNotFound, "")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.adminService.Update(c.UserContext(), middleware.CurrentSession(c), id, req)
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	return c.JSON(user)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, services.ErrUserNotFound, "")
	}

	if err := h.adminService.Delete(c.UserContext(), middleware.CurrentSession(c), id); err != nil {
		return respondError(c, err, "Failed to delete user")
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
