package registros

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditorio-asientos/backend/internal/models"
)

// Repository handles registro persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registros repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const registroCols = `id, template_id, nombre, categoria, correo, departamento, token, codigo_acceso,
	invitation_status, invitation_sent_at, invitation_opened_at, invitation_reserved_at,
	invitation_expires_at, invitation_last_error, created_at, updated_at`

func scanRegistro(row pgx.Row) (*models.Registro, error) {
	var reg models.Registro
	err := row.Scan(&reg.ID, &reg.TemplateID, &reg.Nombre, &reg.Categoria, &reg.Correo,
		&reg.Departamento, &reg.Token, &reg.CodigoAcceso, &reg.InvitationStatus,
		&reg.InvitationSentAt, &reg.InvitationOpenedAt, &reg.InvitationReservedAt,
		&reg.InvitationExpiresAt, &reg.InvitationLastError, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// NormalizeNombre collapses inner whitespace and trims, for the
// duplicate-name guard ("Ana Pérez" and "  ana  pérez " collide).
func NormalizeNombre(nombre string) string {
	return strings.Join(strings.Fields(nombre), " ")
}

// NombreTaken reports whether a case-insensitive match for nombre already
// exists within the event.
func (r *Repository) NombreTaken(ctx context.Context, templateID uuid.UUID, nombre string) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM registros
		WHERE template_id = $1 AND lower(btrim(nombre)) = lower(btrim($2)))`
	var taken bool
	err := r.pool.QueryRow(ctx, q, templateID, NormalizeNombre(nombre)).Scan(&taken)
	return taken, err
}

// Create inserts a self-registration row.
func (r *Repository) Create(ctx context.Context, reg *models.Registro) error {
	const q = `INSERT INTO registros (id, template_id, nombre, categoria, token, codigo_acceso)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, invitation_status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, reg.TemplateID, reg.Nombre, reg.Categoria, reg.Token, reg.CodigoAcceso).
		Scan(&reg.ID, &reg.InvitationStatus, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetByToken resolves a registro by bearer token scoped to an event.
func (r *Repository) GetByToken(ctx context.Context, token string, templateID uuid.UUID) (*models.Registro, error) {
	const q = `SELECT ` + registroCols + ` FROM registros WHERE token = $1 AND template_id = $2`
	return scanRegistro(r.pool.QueryRow(ctx, q, token, templateID))
}

// GetByTokenAny resolves a registro by token without event scoping. Only the
// identity endpoint uses this; every mutation path is template-scoped.
func (r *Repository) GetByTokenAny(ctx context.Context, token string) (*models.Registro, error) {
	const q = `SELECT ` + registroCols + ` FROM registros WHERE token = $1`
	return scanRegistro(r.pool.QueryRow(ctx, q, token))
}

// GetByAccessCode resolves a registro by its human-entry login code.
func (r *Repository) GetByAccessCode(ctx context.Context, code string, templateID uuid.UUID) (*models.Registro, error) {
	const q = `SELECT ` + registroCols + ` FROM registros WHERE codigo_acceso = $1 AND template_id = $2`
	return scanRegistro(r.pool.QueryRow(ctx, q, code, templateID))
}

// UpdateAccessCode backfills a login code for rows created before codes existed.
func (r *Repository) UpdateAccessCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE registros SET codigo_acceso = $1, updated_at = NOW() WHERE id = $2`, code, id)
	return err
}

// SetInvitationStatus updates the invitation lifecycle state and its matching
// timestamp column.
func (r *Repository) SetInvitationStatus(ctx context.Context, id uuid.UUID, status string) error {
	var col string
	switch status {
	case models.InvitationSent:
		col = "invitation_sent_at"
	case models.InvitationOpened:
		col = "invitation_opened_at"
	case models.InvitationReserved:
		col = "invitation_reserved_at"
	}
	if col == "" {
		_, err := r.pool.Exec(ctx, `UPDATE registros SET invitation_status = $1, updated_at = NOW() WHERE id = $2`, status, id)
		return err
	}
	q := `UPDATE registros SET invitation_status = $1, ` + col + ` = NOW(), updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, status, id)
	return err
}

// SetInvitationError records a delivery failure for a registro.
func (r *Repository) SetInvitationError(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := r.pool.Exec(ctx, `UPDATE registros SET invitation_last_error = $1, updated_at = NOW() WHERE id = $2`, msg, id)
	return err
}

// ClearInvitationError resets invitation_last_error (set again on failure).
func (r *Repository) ClearInvitationError(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE registros SET invitation_last_error = NULL, updated_at = NOW() WHERE id = ANY($1)`, ids)
	return err
}

// ListForSend returns invitation recipients with an email in one of the given
// lifecycle states, up to limit.
func (r *Repository) ListForSend(ctx context.Context, templateID uuid.UUID, statuses []string, limit int) ([]models.Registro, error) {
	const q = `SELECT ` + registroCols + ` FROM registros
		WHERE template_id = $1 AND invitation_status = ANY($2) AND correo IS NOT NULL
		ORDER BY created_at
		LIMIT $3`
	rows, err := r.pool.Query(ctx, q, templateID, statuses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// GetByCorreos returns the event's registros matching the given normalized
// emails, keyed by lowercase email.
func (r *Repository) GetByCorreos(ctx context.Context, templateID uuid.UUID, correos []string) (map[string]*models.Registro, error) {
	const q = `SELECT ` + registroCols + ` FROM registros
		WHERE template_id = $1 AND lower(correo) = ANY($2)`
	rows, err := r.pool.Query(ctx, q, templateID, correos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := collect(rows)
	if err != nil {
		return nil, err
	}
	byCorreo := make(map[string]*models.Registro, len(list))
	for i := range list {
		if list[i].Correo != nil {
			byCorreo[strings.ToLower(*list[i].Correo)] = &list[i]
		}
	}
	return byCorreo, nil
}

// CreateImported inserts a roster-imported registro with pending invitation.
func (r *Repository) CreateImported(ctx context.Context, reg *models.Registro) error {
	const q = `INSERT INTO registros (id, template_id, nombre, categoria, correo, departamento, token, codigo_acceso, invitation_status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING id, invitation_status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, reg.TemplateID, reg.Nombre, reg.Categoria, reg.Correo,
		reg.Departamento, reg.Token, reg.CodigoAcceso).
		Scan(&reg.ID, &reg.InvitationStatus, &reg.CreatedAt, &reg.UpdatedAt)
}

// UpdateImported refreshes the mutable roster fields of an existing registro.
func (r *Repository) UpdateImported(ctx context.Context, id uuid.UUID, nombre, categoria, correo string, departamento *string) error {
	_, err := r.pool.Exec(ctx, `UPDATE registros
		SET nombre = $1, categoria = $2, correo = $3, departamento = $4, updated_at = NOW()
		WHERE id = $5`, nombre, categoria, correo, departamento, id)
	return err
}

// CountByStatus returns how many registros of the event are in the state.
func (r *Repository) CountByStatus(ctx context.Context, templateID uuid.UUID, status string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registros WHERE template_id = $1 AND invitation_status = $2`,
		templateID, status).Scan(&n)
	return n, err
}

// DeleteByTemplate wipes all registros of an event (admin cleanup).
func (r *Repository) DeleteByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM registros WHERE template_id = $1`, templateID)
	return tag.RowsAffected(), err
}

func collect(rows pgx.Rows) ([]models.Registro, error) {
	var list []models.Registro
	for rows.Next() {
		var reg models.Registro
		if err := rows.Scan(&reg.ID, &reg.TemplateID, &reg.Nombre, &reg.Categoria, &reg.Correo,
			&reg.Departamento, &reg.Token, &reg.CodigoAcceso, &reg.InvitationStatus,
			&reg.InvitationSentAt, &reg.InvitationOpenedAt, &reg.InvitationReservedAt,
			&reg.InvitationExpiresAt, &reg.InvitationLastError, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}
