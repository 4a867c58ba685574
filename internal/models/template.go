package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Template is one ceremony event. Data holds a legacy seat-map snapshot kept
// for older admin exports; live state comes from the assignments table.
type Template struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventQuota is the per-category seat quota for an event.
type EventQuota struct {
	TemplateID uuid.UUID `json:"template_id"`
	Categoria  string    `json:"categoria"`
	CupoTotal  int       `json:"cupo_total"`
	CupoUsado  int       `json:"cupo_usado"`
}

// EventMetrics summarizes an event for the admin dashboard.
type EventMetrics struct {
	Assigned       int `json:"assigned"`
	PendingInvites int `json:"pendingInvites"`
}
