package seats

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditorio-asientos/backend/internal/models"
)

// Repository executes claim/release plans against the assignments table.
// Every multi-step mutation runs in one transaction with the affected rows
// locked, so two requesters racing for the same open slot serialize and the
// loser fails the in-transaction re-check instead of corrupting state. The
// (template_id, seat_id) primary key is the backstop.
type Repository struct {
	pool   *pgxpool.Pool
	policy Policy
}

// NewRepository creates a seats repository with the configured slot policy.
func NewRepository(pool *pgxpool.Pool, policy Policy) *Repository {
	return &Repository{pool: pool, policy: policy}
}

const assignmentCols = `seat_id, template_id, nombre_invitado, categoria, registro_id, assigned_at`

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.SeatID, &a.TemplateID, &a.NombreInvitado, &a.Categoria, &a.RegistroID, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Get returns the assignment for a seat, or nil when the seat has no row.
func (r *Repository) Get(ctx context.Context, templateID uuid.UUID, seatID string) (*models.Assignment, error) {
	const q = `SELECT ` + assignmentCols + ` FROM assignments WHERE template_id = $1 AND seat_id = $2`
	return scanAssignment(r.pool.QueryRow(ctx, q, templateID, seatID))
}

// ListByTemplate returns all assignment rows for an event.
func (r *Repository) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.Assignment, error) {
	const q = `SELECT ` + assignmentCols + ` FROM assignments WHERE template_id = $1 ORDER BY seat_id`
	rows, err := r.pool.Query(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.SeatID, &a.TemplateID, &a.NombreInvitado, &a.Categoria, &a.RegistroID, &a.AssignedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ClaimOptions tunes Claim for the two claim flows.
type ClaimOptions struct {
	// RequireExisting: fail with ErrSeatMissing when the seat has no row.
	// The invitation flow only lets guests take pre-provisioned slots.
	RequireExisting bool
}

// Claim binds the seat to the requester, first releasing any previous seat the
// requester holds in the same event (reverting it to an open slot when the
// requester's category is a reusable quota category).
func (r *Repository) Claim(ctx context.Context, templateID uuid.UUID, seatID string, req Requester, opts ClaimOptions) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		existing, err := lockSeat(ctx, tx, templateID, seatID)
		if err != nil {
			return err
		}
		if existing == nil && opts.RequireExisting {
			return ErrSeatMissing
		}
		plan, err := DecideClaim(r.policy, existing, req)
		if err != nil {
			return err
		}

		if err := releasePrevious(ctx, tx, templateID, seatID, req, plan.RevertPrevious); err != nil {
			return err
		}

		now := time.Now().UTC()
		if plan.ReplaceTarget {
			_, err = tx.Exec(ctx, `UPDATE assignments
				SET nombre_invitado = $1, categoria = $2, registro_id = $3, assigned_at = $4
				WHERE template_id = $5 AND seat_id = $6`,
				req.Nombre, req.Categoria, req.ID, now, templateID, seatID)
		} else {
			_, err = tx.Exec(ctx, `INSERT INTO assignments (seat_id, template_id, nombre_invitado, categoria, registro_id, assigned_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				seatID, templateID, req.Nombre, req.Categoria, req.ID, now)
		}
		return err
	})
}

// ReleaseOptions tunes Release for the two release flows.
type ReleaseOptions struct {
	// ForceRevert: always revert to an open slot regardless of policy. The
	// invitation flow never deletes rows because its seats are provisioned
	// quota slots by construction.
	ForceRevert bool
}

// Release unbinds the requester from the seat, reverting the row to an open
// slot of the requester's category or deleting it per the slot policy.
func (r *Repository) Release(ctx context.Context, templateID uuid.UUID, seatID string, req Requester, opts ReleaseOptions) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		existing, err := lockSeat(ctx, tx, templateID, seatID)
		if err != nil {
			return err
		}
		plan, err := DecideRelease(r.policy, existing, req)
		if err != nil {
			return err
		}
		if plan.Revert || opts.ForceRevert {
			_, err = tx.Exec(ctx, `UPDATE assignments
				SET nombre_invitado = $1, registro_id = NULL, categoria = $2
				WHERE template_id = $3 AND seat_id = $4`,
				models.SlotCupoDisponible, req.Categoria, templateID, seatID)
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM assignments WHERE template_id = $1 AND seat_id = $2`, templateID, seatID)
		return err
	})
}

func lockSeat(ctx context.Context, tx pgx.Tx, templateID uuid.UUID, seatID string) (*models.Assignment, error) {
	const q = `SELECT ` + assignmentCols + ` FROM assignments WHERE template_id = $1 AND seat_id = $2 FOR UPDATE`
	return scanAssignment(tx.QueryRow(ctx, q, templateID, seatID))
}

// releasePrevious clears the requester's current seat in the event, if any,
// excluding the target seat (re-confirming the same seat must not wipe it).
func releasePrevious(ctx context.Context, tx pgx.Tx, templateID uuid.UUID, targetSeatID string, req Requester, revert bool) error {
	const q = `SELECT seat_id FROM assignments
		WHERE template_id = $1 AND registro_id = $2 AND seat_id <> $3 FOR UPDATE`
	rows, err := tx.Query(ctx, q, templateID, req.ID, targetSeatID)
	if err != nil {
		return err
	}
	var seatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		seatIDs = append(seatIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range seatIDs {
		if revert {
			_, err = tx.Exec(ctx, `UPDATE assignments
				SET nombre_invitado = $1, registro_id = NULL, categoria = $2
				WHERE template_id = $3 AND seat_id = $4`,
				models.SlotCupoDisponible, req.Categoria, templateID, id)
		} else {
			_, err = tx.Exec(ctx, `DELETE FROM assignments WHERE template_id = $1 AND seat_id = $2`, templateID, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByTemplate wipes all assignments of an event (admin cleanup).
func (r *Repository) DeleteByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE template_id = $1`, templateID)
	return tag.RowsAffected(), err
}

// CountByTemplate returns the number of assignment rows for an event.
func (r *Repository) CountByTemplate(ctx context.Context, templateID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignments WHERE template_id = $1`, templateID).Scan(&n)
	return n, err
}
