package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/freelaz/marketplace-api/internal/core/domain"
)

type RoleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Assign inserts a role assignment. Set semantics: assigning a role the
// user already holds is a no-op.
func (r *RoleRepository) Assign(ctx context.Context, userID string, role domain.AppRole) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

func (r *RoleRepository) FindByUserID(ctx context.Context, userID string) (domain.RoleSet, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
	`
	var roles []string
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}

	set := domain.NewRoleSet()
	for _, role := range roles {
		set[domain.AppRole(role)] = struct{}{}
	}
	return set, nil
}
