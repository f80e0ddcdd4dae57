package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, avatar_url, bio, role, phone, cpf, birth_date, plan_type, is_onboarding_complete, city, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			bio = EXCLUDED.bio,
			role = EXCLUDED.role,
			phone = EXCLUDED.phone,
			cpf = EXCLUDED.cpf,
			birth_date = EXCLUDED.birth_date,
			plan_type = EXCLUDED.plan_type,
			is_onboarding_complete = EXCLUDED.is_onboarding_complete,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.FullName, profile.AvatarURL, profile.Bio, profile.Role,
		profile.Phone, profile.CPF, profile.BirthDate, profile.PlanType,
		profile.IsOnboardingComplete, profile.City, profile.State,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, full_name, avatar_url, bio, role, phone, cpf, birth_date, plan_type, is_onboarding_complete, city, state, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var profile domain.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}
