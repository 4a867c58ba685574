package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Entry is one audit event to record.
type Entry struct {
	TemplateID *uuid.UUID
	ActorType  string
	ActorID    *uuid.UUID
	Action     string
	Entity     string
	EntityID   string
	Payload    map[string]any
}

// Repository appends audit entries. Writes are best-effort: a failed audit
// write is logged and swallowed so it never blocks the business operation.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// Write appends an audit entry.
func (r *Repository) Write(ctx context.Context, e Entry) {
	payload := []byte("{}")
	if e.Payload != nil {
		if b, err := json.Marshal(e.Payload); err == nil {
			payload = b
		}
	}
	var entityID *string
	if e.EntityID != "" {
		entityID = &e.EntityID
	}
	const q = `INSERT INTO audit_logs (id, template_id, actor_type, actor_id, action, entity, entity_id, payload)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.pool.Exec(ctx, q, e.TemplateID, e.ActorType, e.ActorID, e.Action, e.Entity, entityID, payload); err != nil {
		r.logger.Warn("audit write failed", zap.Error(err), zap.String("action", e.Action))
	}
}
