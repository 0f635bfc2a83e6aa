package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository"
)

// UserService serves the signed-in user's own view.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Dashboard(ctx context.Context, sess *Session) (*dto.DashboardViewResponse, error) {
	if err := RequireSession(sess); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &dto.DashboardViewResponse{
		User:    SessionUser(sess),
		Zipcode: user.Zipcode,
		City:    user.City,
		State:   user.State,
	}, nil
}

func SessionUser(sess *Session) dto.UserResponse {
	return dto.UserResponse{
		ID:    sess.UserID,
		Name:  sess.Name,
		Email: sess.Email,
		Role:  sess.Role,
	}
}
