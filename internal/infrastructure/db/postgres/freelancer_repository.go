package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

type FreelancerRepository struct {
	db *sqlx.DB
}

func NewFreelancerRepository(db *sqlx.DB) *FreelancerRepository {
	return &FreelancerRepository{db: db}
}

func (r *FreelancerRepository) Upsert(ctx context.Context, detail *domain.FreelancerDetail) error {
	query := `
		INSERT INTO freelancers (id, availability_status, hourly_rate_cents, headline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			availability_status = EXCLUDED.availability_status,
			hourly_rate_cents = EXCLUDED.hourly_rate_cents,
			headline = EXCLUDED.headline,
			updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, detail.ID, detail.AvailabilityStatus, detail.HourlyRateCents, detail.Headline); err != nil {
		return fmt.Errorf("upsert freelancer: %w", err)
	}
	return nil
}

func (r *FreelancerRepository) FindByID(ctx context.Context, id string) (*domain.FreelancerDetail, error) {
	query := `
		SELECT id, availability_status, hourly_rate_cents, headline, created_at, updated_at
		FROM freelancers
		WHERE id = $1
	`
	var detail domain.FreelancerDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find freelancer: %w", err)
	}
	return &detail, nil
}
