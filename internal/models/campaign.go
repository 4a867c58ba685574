package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign delivery modes and states.
const (
	CampaignModeSMTP     = "smtp"
	CampaignModeSimulate = "simulate"

	CampaignStatusRunning   = "running"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// InvitationCampaign is one batch send of invitation emails for an event.
type InvitationCampaign struct {
	ID          uuid.UUID  `json:"id"`
	TemplateID  uuid.UUID  `json:"template_id"`
	Subject     *string    `json:"subject,omitempty"`
	Mode        string     `json:"mode"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Sent        int        `json:"sent"`
	Failed      int        `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
