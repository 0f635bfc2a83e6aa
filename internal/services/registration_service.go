package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/validation"
)

const (
	MsgEmailTaken         = "email already registered, try logging in or use a different email."
	MsgInvalidEmail       = "invalid or already-registered email."
	MsgSignUpFailed       = "failed to create account, try again."
	MsgInvalidCredentials = "invalid email or password."
	MsgSignInFailed       = "failed to sign in, try again."
)

// Identity is the slice of the identity provider the registration and
// login flows depend on.
type Identity interface {
	SignUpEmail(ctx context.Context, in SignUpInput, meta ClientMeta) (*IssuedSession, error)
	SignInEmail(ctx context.Context, email, password string, meta ClientMeta) (*IssuedSession, error)
}

type AddressLookup interface {
	Lookup(ctx context.Context, raw string) (*PostalAddress, error)
}

// AuthResult tells the caller which session to set and where the client
// must navigate. The navigation has to be a full page load so the new
// session cookie is sent with the next request.
type AuthResult struct {
	Issued   *IssuedSession
	Redirect string
}

type RegistrationService struct {
	identity Identity
	postal   AddressLookup
}

// NewRegistrationService accepts a nil postal lookup, in which case the
// submitted city and state are used as-is.
func NewRegistrationService(identity Identity, postal AddressLookup) *RegistrationService {
	return &RegistrationService{identity: identity, postal: postal}
}

func (s *RegistrationService) Register(ctx context.Context, in validation.RegistrationInput, meta ClientMeta) (*AuthResult, error) {
	payload, fieldErrs := validation.ValidateRegistration(in)
	if fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if err := s.enrich(ctx, &payload); err != nil {
		return nil, err
	}

	issued, err := s.identity.SignUpEmail(ctx, SignUpInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Zipcode:  payload.Zipcode,
		City:     payload.City,
		State:    payload.State,
	}, meta)
	if err != nil {
		return nil, ClassifySignUpError(err)
	}

	return &AuthResult{Issued: issued, Redirect: LandingFor(issued.Session)}, nil
}

// enrich overwrites city and state with the directory result. An unknown
// code is a field error; an unreachable directory keeps the submitted
// values, which already passed validation.
func (s *RegistrationService) enrich(ctx context.Context, payload *validation.RegistrationPayload) error {
	if s.postal == nil {
		return nil
	}
	addr, err := s.postal.Lookup(ctx, payload.Zipcode)
	switch {
	case err == nil:
		payload.City = addr.City
		payload.State = addr.State
		return nil
	case errors.Is(err, ErrPostalCodeNotFound), errors.Is(err, ErrInvalidPostalCode):
		return &ValidationError{Fields: validation.FieldErrors{
			validation.FieldZipcode: err.Error(),
		}}
	default:
		slog.Warn("postal code enrichment skipped", "zipcode", payload.Zipcode, "error", err)
		return nil
	}
}

// ClassifySignUpError maps identity provider failures to user-facing
// messages.
func ClassifySignUpError(err error) error {
	var perr *ProviderError
	if errors.As(err, &perr) {
		msg := strings.ToLower(perr.Message)
		switch {
		case perr.Code == CodeUserAlreadyExists ||
			strings.Contains(msg, "already exists") ||
			strings.Contains(msg, "já existe"):
			return &PublicError{Class: ErrEmailTaken, Message: MsgEmailTaken, Cause: err}
		case strings.Contains(msg, "email"):
			return &PublicError{Class: ErrInvalidEmail, Message: MsgInvalidEmail, Cause: err}
		case perr.Message != "":
			return &PublicError{Class: ErrRejected, Message: perr.Message, Cause: err}
		}
		return &PublicError{Class: ErrRejected, Message: MsgSignUpFailed, Cause: err}
	}
	if isTransient(err) {
		return &PublicError{Class: ErrUpstream, Message: ErrUpstream.Error(), Cause: err}
	}
	return &PublicError{Class: errInternal, Message: MsgSignUpFailed, Cause: err}
}

func (s *RegistrationService) Login(ctx context.Context, in validation.LoginInput, meta ClientMeta) (*AuthResult, error) {
	payload, fieldErrs := validation.ValidateLogin(in)
	if fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	issued, err := s.identity.SignInEmail(ctx, payload.Email, payload.Password, meta)
	if err != nil {
		return nil, ClassifySignInError(err)
	}

	return &AuthResult{Issued: issued, Redirect: LandingFor(issued.Session)}, nil
}

func ClassifySignInError(err error) error {
	var perr *ProviderError
	if errors.As(err, &perr) {
		if perr.Code == CodeInvalidCredentials || perr.Message == "Invalid credentials" {
			return &PublicError{Class: ErrInvalidCredentials, Message: MsgInvalidCredentials, Cause: err}
		}
		msg := perr.Message
		if msg == "" {
			msg = MsgSignInFailed
		}
		return &PublicError{Class: ErrRejected, Message: msg, Cause: err}
	}
	if isTransient(err) {
		return &PublicError{Class: ErrUpstream, Message: ErrUpstream.Error(), Cause: err}
	}
	return &PublicError{Class: errInternal, Message: MsgSignInFailed, Cause: err}
}

// errInternal marks failures that must surface as a server error.
var errInternal = errors.New("internal error")

func IsInternal(err error) bool {
	return errors.Is(err, errInternal)
}

func isTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrUpstream)
}
