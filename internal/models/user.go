package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the profile row. Credentials live in Account.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email         string    `gorm:"not null;size:254;uniqueIndex" json:"email"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	Role          string    `gorm:"size:20;not null;default:'USER';index" json:"role"`
	Zipcode       string    `gorm:"size:8;not null" json:"zipcode"`
	City          string    `gorm:"size:80;not null" json:"city"`
	State         string    `gorm:"size:2;not null" json:"state"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Accounts []Account `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions []Session `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
