package db

import (
	"context"
	"errors"
	"time"

	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/dineqr/menuhub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the configured admin account if it does not
// exist yet. A deployment without admin credentials configured simply
// skips seeding.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing string

	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1)`,
		cfg.AdminEmail,
	).Scan(&existing)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, is_active, is_email_verified, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, TRUE, TRUE, $6, $6)`,
		uuid.NewString(),
		cfg.AdminEmail,
		hash,
		"Administrator",
		string(user.RoleAdmin),
		now,
	)

	return err
}
