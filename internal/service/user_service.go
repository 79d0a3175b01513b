package service

import (
	"context"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
	"github.com/Tail418/nugulmap-api/internal/domain/repository"
)

// UserService reads local accounts.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates the service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetByID returns the stored account; apperrors.ErrNotFound when it does not exist.
func (s *UserService) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
