package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const defaultTimeout = 5 * time.Second

// Connect opens a Postgres pool and validates connectivity with a ping.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// schema is the relational slice of the marketplace this service owns:
// profiles, role assignments, and freelancer details. The wider marketplace
// relations (products, orders, contracts, payments, stores) belong to other
// services and are not created here.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id                      TEXT PRIMARY KEY,
	full_name               TEXT NOT NULL DEFAULT '',
	avatar_url              TEXT NOT NULL DEFAULT '',
	bio                     TEXT NOT NULL DEFAULT '',
	role                    TEXT NOT NULL DEFAULT '',
	phone                   TEXT NOT NULL DEFAULT '',
	cpf                     TEXT NOT NULL DEFAULT '',
	birth_date              TEXT NOT NULL DEFAULT '',
	plan_type               TEXT NOT NULL DEFAULT '',
	is_onboarding_complete  BOOLEAN NOT NULL DEFAULT FALSE,
	city                    TEXT NOT NULL DEFAULT '',
	state                   TEXT NOT NULL DEFAULT '',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id     TEXT NOT NULL,
	role        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS freelancers (
	id                   TEXT PRIMARY KEY,
	availability_status  TEXT NOT NULL DEFAULT 'AVAILABLE',
	hourly_rate_cents    BIGINT NOT NULL DEFAULT 0,
	headline             TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema. Statements are idempotent; safe to run at
// every startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
