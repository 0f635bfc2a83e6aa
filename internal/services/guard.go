package services

import "github.com/ahmetcoskunkizilkaya/auth-user/internal/models"

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathAdmin     = "/admin"
)

// RequireSession fails when no session is present.
func RequireSession(s *Session) error {
	if s == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin is the single authorization check for every privileged
// operation. The role comes from the database, never from the token.
func RequireAdmin(s *Session) error {
	if err := RequireSession(s); err != nil {
		return err
	}
	if s.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// LandingFor returns the one canonical destination for a session.
func LandingFor(s *Session) string {
	switch {
	case s == nil:
		return PathLogin
	case s.Role == models.RoleAdmin:
		return PathAdmin
	default:
		return PathDashboard
	}
}
