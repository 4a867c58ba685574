package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actor types.
const (
	ActorSuperAdmin  = "super_admin"
	ActorAdminEvento = "admin_evento"
	ActorDelegado    = "delegado"
	ActorInvitado    = "invitado"
	ActorSystem      = "system"
)

// AuditLog is one append-only audit entry. Writes are best-effort and must
// never block the business operation that produced them.
type AuditLog struct {
	ID         uuid.UUID       `json:"id"`
	TemplateID *uuid.UUID      `json:"template_id,omitempty"`
	ActorType  string          `json:"actor_type"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	Entity     string          `json:"entity"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
