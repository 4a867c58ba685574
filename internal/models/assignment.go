package models

import (
	"time"

	"github.com/google/uuid"
)

// Sentinel guest names marking an assignment row as a reusable category slot
// rather than an occupied seat. Kept for wire/storage compatibility with the
// historical data; code should go through seats.DecodeOccupant instead of
// comparing these directly.
const (
	SlotCupoDisponible = "Cupo Disponible"
	SlotReservado      = "Reservado"
)

// Assignment is one claimed seat (or open slot) within an event.
// At most one row exists per (template_id, seat_id).
type Assignment struct {
	SeatID         string     `json:"seat_id"`
	TemplateID     uuid.UUID  `json:"template_id"`
	NombreInvitado string     `json:"nombre_invitado"`
	Categoria      string     `json:"categoria"`
	RegistroID     *uuid.UUID `json:"registro_id,omitempty"`
	AssignedAt     time.Time  `json:"assigned_at"`
}

// IsOpenSlot reports whether the row represents an unclaimed quota position.
func (a *Assignment) IsOpenSlot() bool {
	return a.RegistroID == nil || a.NombreInvitado == SlotCupoDisponible || a.NombreInvitado == SlotReservado
}
