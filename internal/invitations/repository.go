package invitations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditorio-asientos/backend/internal/models"
)

// Repository handles invitation campaign persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invitations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCampaign inserts a campaign row in running state.
func (r *Repository) CreateCampaign(ctx context.Context, camp *models.InvitationCampaign) error {
	const q = `INSERT INTO invitation_campaigns (id, template_id, subject, mode, status, total)
		VALUES (gen_random_uuid(), $1, $2, $3, 'running', $4)
		RETURNING id, status, sent, failed, created_at`
	return r.pool.QueryRow(ctx, q, camp.TemplateID, camp.Subject, camp.Mode, camp.Total).
		Scan(&camp.ID, &camp.Status, &camp.Sent, &camp.Failed, &camp.CreatedAt)
}

// RecordDelivery bumps the campaign's sent or failed counter and completes
// the campaign once every recipient is accounted for.
func (r *Repository) RecordDelivery(ctx context.Context, campaignID uuid.UUID, ok bool) error {
	sentDelta, failedDelta := 1, 0
	if !ok {
		sentDelta, failedDelta = 0, 1
	}
	const q = `UPDATE invitation_campaigns
		SET sent = sent + $2,
		    failed = failed + $3,
		    status = CASE WHEN sent + failed + 1 >= total
		        THEN CASE WHEN failed + $3 > 0 THEN 'failed' ELSE 'completed' END
		        ELSE status END,
		    completed_at = CASE WHEN sent + failed + 1 >= total THEN NOW() ELSE completed_at END
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, campaignID, sentDelta, failedDelta)
	return err
}

// GetCampaign returns a campaign, or nil when it does not exist.
func (r *Repository) GetCampaign(ctx context.Context, id uuid.UUID) (*models.InvitationCampaign, error) {
	const q = `SELECT id, template_id, subject, mode, status, total, sent, failed, created_at, completed_at
		FROM invitation_campaigns WHERE id = $1`
	var camp models.InvitationCampaign
	err := r.pool.QueryRow(ctx, q, id).Scan(&camp.ID, &camp.TemplateID, &camp.Subject, &camp.Mode,
		&camp.Status, &camp.Total, &camp.Sent, &camp.Failed, &camp.CreatedAt, &camp.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &camp, nil
}

// ListByTemplate returns an event's campaigns, newest first.
func (r *Repository) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.InvitationCampaign, error) {
	const q = `SELECT id, template_id, subject, mode, status, total, sent, failed, created_at, completed_at
		FROM invitation_campaigns WHERE template_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.InvitationCampaign
	for rows.Next() {
		var camp models.InvitationCampaign
		if err := rows.Scan(&camp.ID, &camp.TemplateID, &camp.Subject, &camp.Mode, &camp.Status,
			&camp.Total, &camp.Sent, &camp.Failed, &camp.CreatedAt, &camp.CompletedAt); err != nil {
			return nil, err
		}
		list = append(list, camp)
	}
	return list, rows.Err()
}
