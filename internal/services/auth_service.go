package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Identity provider error codes.
const (
	CodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_EMAIL_OR_PASSWORD"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
)

// ProviderError is a failure reported by the identity provider itself, as
// opposed to an infrastructure error.
type ProviderError struct {
	Code    string
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Session is the boundary fact the rest of the system consumes: who is
// signed in and with which role.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// IssuedSession is returned by sign up and sign in. Token goes into the
// session cookie.
type IssuedSession struct {
	Token   string
	Session *Session
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Zipcode  string
	City     string
	State    string
}

// ClientMeta is recorded on the session row.
type ClientMeta struct {
	IP        string
	UserAgent string
}

type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	expiry   time.Duration
	cost     int
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, cfg *config.Config) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(cfg.SessionSecret),
		expiry:   cfg.SessionExpiry,
		cost:     cost,
		now:      time.Now,
	}
}

// SignUpEmail creates the user, its credential record and a session.
// The role is always USER.
func (s *AuthService) SignUpEmail(ctx context.Context, in SignUpInput, meta ClientMeta) (*IssuedSession, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ProviderError{Code: CodeInvalidEmail, Status: http.StatusBadRequest, Message: "invalid email"}
	}
	if len(in.Password) < 8 {
		return nil, &ProviderError{Code: CodePasswordTooShort, Status: http.StatusBadRequest, Message: "password too short"}
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:      uuid.New(),
		Email:   email,
		Name:    strings.TrimSpace(in.Name),
		Role:    models.RoleUser,
		Zipcode: in.Zipcode,
		City:    in.City,
		State:   in.State,
	}
	account := models.Account{
		ID:         uuid.New(),
		ProviderID: models.ProviderCredential,
		Password:   hash,
	}

	if err := s.users.CreateWithAccount(ctx, &user, &account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ProviderError{
				Code:    CodeUserAlreadyExists,
				Status:  http.StatusUnprocessableEntity,
				Message: "user already exists",
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueSession(ctx, &user, meta)
}

// SignInEmail checks the credential and opens a new session.
func (s *AuthService) SignInEmail(ctx context.Context, email, password string, meta ClientMeta) (*IssuedSession, error) {
	invalid := &ProviderError{
		Code:    CodeInvalidCredentials,
		Status:  http.StatusUnauthorized,
		Message: "Invalid credentials",
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	account, err := s.users.FindCredential(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, invalid
	}

	return s.issueSession(ctx, user, meta)
}

// GetSession resolves a session id taken from a verified token. The user's
// current role is read from the database.
func (s *AuthService) GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	stored, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !stored.Active(s.now()) {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return &Session{
		ID:        stored.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

func (s *AuthService) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// HashPassword returns a bcrypt hash. The plaintext is never stored.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, meta ClientMeta) (*IssuedSession, error) {
	now := s.now()
	record := models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.expiry),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, &record); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"sid":   record.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   record.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &IssuedSession{
		Token: token,
		Session: &Session{
			ID:        record.ID,
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			ExpiresAt: record.ExpiresAt,
		},
	}, nil
}

// SessionIDFromClaims extracts the session id from verified token claims.
func SessionIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(sid)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}
