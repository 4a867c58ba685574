package models

import (
	"time"

	"github.com/google/uuid"
)

// Seat categories. "bloqueado" marks seats closed by the venue and is never a
// valid attendee category.
const (
	CategoriaAutoridad  = "autoridad"
	CategoriaDocente    = "docente"
	CategoriaInvitado   = "invitado"
	CategoriaEstudiante = "estudiante"
	CategoriaBloqueado  = "bloqueado"
)

// ValidCategoria reports whether c is a category an attendee may register under.
func ValidCategoria(c string) bool {
	switch c {
	case CategoriaAutoridad, CategoriaDocente, CategoriaInvitado, CategoriaEstudiante:
		return true
	}
	return false
}

// Invitation lifecycle states for a registro.
const (
	InvitationPending   = "pending"
	InvitationSent      = "sent"
	InvitationOpened    = "opened"
	InvitationReserved  = "reserved"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

// Registro is an attendee registration for an event (template).
type Registro struct {
	ID                   uuid.UUID  `json:"id"`
	TemplateID           *uuid.UUID `json:"template_id,omitempty"`
	Nombre               string     `json:"nombre"`
	Categoria            string     `json:"categoria"`
	Correo               *string    `json:"correo,omitempty"`
	Departamento         *string    `json:"departamento,omitempty"`
	Token                string     `json:"-"`
	CodigoAcceso         string     `json:"codigo_acceso,omitempty"`
	InvitationStatus     string     `json:"invitation_status,omitempty"`
	InvitationSentAt     *time.Time `json:"invitation_sent_at,omitempty"`
	InvitationOpenedAt   *time.Time `json:"invitation_opened_at,omitempty"`
	InvitationReservedAt *time.Time `json:"invitation_reserved_at,omitempty"`
	InvitationExpiresAt  *time.Time `json:"invitation_expires_at,omitempty"`
	InvitationLastError  *string    `json:"invitation_last_error,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
