package ports

import (
	"context"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

// IdentityRepository persists credential records.
type IdentityRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
