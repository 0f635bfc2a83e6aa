package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderCredential identifies email/password accounts.
const ProviderCredential = "credential"

// Account is a credential record owned by a User. Password always holds a
// bcrypt hash.
type Account struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProviderID string    `gorm:"size:50;not null;default:'credential'" json:"provider_id"`
	AccountID  string    `gorm:"size:255;not null" json:"-"`
	Password   string    `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
