package handlers

import (
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PostalHandler lets the registration form prefill city and state while
// the user types.
type PostalHandler struct {
	lookup services.AddressLookup
}

func NewPostalHandler(lookup services.AddressLookup) *PostalHandler {
	return &PostalHandler{lookup: lookup}
}

func (h *PostalHandler) Lookup(c *fiber.Ctx) error {
	addr, err := h.lookup.Lookup(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, err, services.ErrUpstream.Error())
	}
	return c.JSON(dto.PostalCodeResponse{
		Zipcode: addr.Zipcode,
		City:    addr.City,
		State:   addr.State,
	})
}
