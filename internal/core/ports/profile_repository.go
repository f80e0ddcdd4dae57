package ports

import (
	"context"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

// ProfileRepository persists application profiles keyed by user id.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
}

// RoleRepository persists role assignments with set semantics: inserting an
// assignment the user already holds is a no-op, not an error.
type RoleRepository interface {
	Assign(ctx context.Context, userID string, role domain.AppRole) error
	FindByUserID(ctx context.Context, userID string) (domain.RoleSet, error)
}

// FreelancerRepository persists freelancer-specific detail rows.
type FreelancerRepository interface {
	Upsert(ctx context.Context, detail *domain.FreelancerDetail) error
	FindByID(ctx context.Context, id string) (*domain.FreelancerDetail, error)
}
