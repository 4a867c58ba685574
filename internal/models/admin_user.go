package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is an administrator account for the event-management surface.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
