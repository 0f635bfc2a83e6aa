package dto

import (
	"time"

	"github.com/google/uuid"
)

// AdminUserResponse is the only user shape the admin surface exposes.
type AdminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Zipcode   string    `json:"zipcode"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateUserRequest fields are optional; blank values count as absent.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type AdminViewResponse struct {
	Admin UserResponse        `json:"admin"`
	Users []AdminUserResponse `json:"users"`
}

type DashboardViewResponse struct {
	User    UserResponse `json:"user"`
	Zipcode string       `json:"zipcode"`
	City    string       `json:"city"`
	State   string       `json:"state"`
}

type FormViewResponse struct {
	View string `json:"view"`
}
