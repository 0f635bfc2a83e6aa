package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/validation"
	"github.com/google/uuid"
)

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// AdminService manages user records. Every method re-checks that the actor
// is an administrator, whatever middleware ran before it.
type AdminService struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewAdminService(users repository.UserRepository, hasher PasswordHasher) *AdminService {
	return &AdminService{users: users, hasher: hasher}
}

func (s *AdminService) List(ctx context.Context, actor *Session) ([]dto.AdminUserResponse, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToAdminUser(&users[i]))
	}
	return out, nil
}

// Update changes the name and/or password. Blank fields are ignored; when
// nothing remains the call fails without writing.
func (s *AdminService) Update(ctx context.Context, actor *Session, id uuid.UUID, req dto.UpdateUserRequest) (*dto.AdminUserResponse, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var name, hash *string
	if req.Name != nil {
		if trimmed := strings.TrimSpace(*req.Name); trimmed != "" {
			if utf8.RuneCountInString(trimmed) > 100 {
				return nil, &ValidationError{Fields: validation.FieldErrors{
					validation.FieldName: "name must be at most 100 characters",
				}}
			}
			name = &trimmed
		}
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		h, err := s.hasher.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}
	if name == nil && hash == nil {
		return nil, ErrNothingToUpdate
	}

	user, err := s.users.Update(ctx, id, name, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user updated by admin",
		"user_id", id.String(),
		"admin_id", actor.UserID.String(),
		"name_changed", name != nil,
		"password_changed", hash != nil,
	)

	resp := ToAdminUser(user)
	return &resp, nil
}

// Delete removes a non-admin user. The role condition is part of the delete
// statement itself; the follow-up read only picks the error to report.
func (s *AdminService) Delete(ctx context.Context, actor *Session, id uuid.UUID) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	deleted, err := s.users.DeleteNonAdmin(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted {
		slog.Info("user deleted by admin", "user_id", id.String(), "admin_id", actor.UserID.String())
		return nil
	}

	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if target.Role == models.RoleAdmin {
		return ErrAdminUndeletable
	}
	// The row changed between the delete and the read; report it as gone.
	return ErrUserNotFound
}

// ToAdminUser projects a user to the fields the admin panel may see.
func ToAdminUser(u *models.User) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Zipcode:   u.Zipcode,
		City:      u.City,
		State:     u.State,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
