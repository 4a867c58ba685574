package templates

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditorio-asientos/backend/internal/models"
)

// Repository handles template (event) persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a templates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an event with an empty legacy data snapshot.
func (r *Repository) Create(ctx context.Context, name string) (*models.Template, error) {
	const q = `INSERT INTO templates (id, name, data) VALUES (gen_random_uuid(), $1, '[]')
		RETURNING id, name, created_at`
	var t models.Template
	if err := r.pool.QueryRow(ctx, q, name).Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns an event, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	const q = `SELECT id, name, created_at FROM templates WHERE id = $1`
	var t models.Template
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// List returns all events, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Quotas returns the per-category quota rows for an event.
func (r *Repository) Quotas(ctx context.Context, templateID uuid.UUID) ([]models.EventQuota, error) {
	const q = `SELECT template_id, categoria, cupo_total, cupo_usado
		FROM event_quotas WHERE template_id = $1 ORDER BY categoria`
	rows, err := r.pool.Query(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventQuota
	for rows.Next() {
		var eq models.EventQuota
		if err := rows.Scan(&eq.TemplateID, &eq.Categoria, &eq.CupoTotal, &eq.CupoUsado); err != nil {
			return nil, err
		}
		list = append(list, eq)
	}
	return list, rows.Err()
}
