package repository

import (
	"context"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
)

// UserRepository stores local accounts keyed by external identity.
type UserRepository interface {
	// FindByExternalIdentity returns apperrors.ErrNotFound when no account exists.
	FindByExternalIdentity(ctx context.Context, provider, externalID string) (*entity.User, error)
	// Create assigns ID and CreatedAt. A concurrent insert of the same
	// (provider, externalID) surfaces as apperrors.ErrConflict.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
}
