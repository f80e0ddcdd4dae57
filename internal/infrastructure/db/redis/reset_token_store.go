package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

// ResetTokenStore keeps single-use password-recovery tokens as TTL keys.
// Key format: pwreset:<token>
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func (s *ResetTokenStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("put reset token: %w", err)
	}
	return nil
}

// Consume returns the user id for the token and deletes it in one round
// trip, so a token can be redeemed at most once.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidResetToken
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (s *ResetTokenStore) key(token string) string {
	return fmt.Sprintf("pwreset:%s", token)
}
