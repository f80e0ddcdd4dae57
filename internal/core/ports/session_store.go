package ports

import (
	"context"
	"time"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

// SessionStore persists issued sessions. Implementations are expected to
// expire entries on their own after the TTL passed to Put.
type SessionStore interface {
	Put(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every session belonging to the user, e.g. after a
	// password change.
	DeleteByUser(ctx context.Context, userID string) error
}

// ResetTokenStore persists single-use password-recovery tokens.
type ResetTokenStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the user id for the token and deletes it atomically;
	// a second Consume of the same token fails with ErrInvalidResetToken.
	Consume(ctx context.Context, token string) (string, error)
}
