package ports

import (
	"context"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

// SignUpInput carries the registration form fields. Role is the user's
// choice at sign-up; admins have no sign-up path.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.ProfileRole
}

// AuthService is the backend auth surface consumed by HTTP handlers and the
// in-process session provider.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, *domain.User, error)
	SignUp(ctx context.Context, in SignUpInput) (*domain.Session, *domain.User, error)
	SignOut(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*domain.Session, *domain.User, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
}

// AccessReader loads the profile and role assignments backing the derived
// access flags. A missing profile or empty role set is not an error.
type AccessReader interface {
	Load(ctx context.Context, userID string) (*domain.Profile, domain.RoleSet, error)
}
