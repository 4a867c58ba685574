package admin

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditorio-asientos/backend/internal/models"
)

// Repository handles admin user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns an admin user, or nil when none matches.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	const q = `SELECT id, email, password_hash, role, created_at FROM admin_users WHERE email = $1`
	var u models.AdminUser
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts an admin user.
func (r *Repository) Create(ctx context.Context, u *models.AdminUser) error {
	const q = `INSERT INTO admin_users (id, email, password_hash, role)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, u.Email, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
}
