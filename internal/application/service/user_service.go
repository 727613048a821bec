package service

import (
	"context"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

// UserService handles user-related operations
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserView is a user row together with its header badge.
type UserView struct {
	entity.User
	Display entity.UserDisplay `json:"display"`
}

// ListUsers returns every user. The sheet being unreachable yields none.
func (s *UserService) ListUsers(ctx context.Context) []UserView {
	users := s.userRepo.List(ctx)
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{User: u, Display: u.Display()})
	}
	return views
}

// ValidateUser checks a user record before it is sent anywhere.
func (s *UserService) ValidateUser(u *entity.User) error {
	if errs := u.Validate(); len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
