package services

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/validation"
)

var (
	ErrUnauthenticated    = errors.New("unauthorized")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrRejected           = errors.New("request rejected by identity provider")
	ErrUserNotFound       = errors.New("user not found")
	ErrAdminUndeletable   = errors.New("administrators cannot be deleted")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrInvalidPostalCode  = errors.New("invalid postal code, type the 8 digits")
	ErrPostalCodeNotFound = errors.New("postal code not found, check it and try again")
	ErrUpstream           = errors.New("connection failed, check your connection and try again")
)

// ValidationError carries field-level messages back to the client.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// PublicError pairs an error class with a message that is safe to show to
// the user. The underlying cause is kept for logging only.
type PublicError struct {
	Class   error
	Message string
	Cause   error
}

func (e *PublicError) Error() string {
	return e.Message
}

func (e *PublicError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Cause}
}
