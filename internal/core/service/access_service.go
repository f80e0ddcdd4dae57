package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
)

// AccessService loads the rows backing the derived access flags. A missing
// profile (e.g. a partially provisioned account) yields a nil profile and no
// error; the flags derived from it are simply all false.
type AccessService struct {
	profiles ports.ProfileRepository
	roles    ports.RoleRepository
}

func NewAccessService(profiles ports.ProfileRepository, roles ports.RoleRepository) *AccessService {
	return &AccessService{profiles: profiles, roles: roles}
}

func (s *AccessService) Load(ctx context.Context, userID string) (*domain.Profile, domain.RoleSet, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}

	roles, err := s.roles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}
	if roles == nil {
		roles = domain.NewRoleSet()
	}

	return profile, roles, nil
}
