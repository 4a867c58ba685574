package seats

import (
	"errors"

	"github.com/google/uuid"

	"github.com/auditorio-asientos/backend/internal/models"
)

// Business-rule failures mapped to HTTP statuses by the handlers.
var (
	// ErrSeatUnavailable: the seat is held by someone else or its slot does not
	// match the requester's category.
	ErrSeatUnavailable = errors.New("asiento ocupado o no corresponde a tu categoría")
	// ErrSeatMissing: the invitation flow requires the seat row to exist.
	ErrSeatMissing = errors.New("el asiento no existe para este evento")
	// ErrNotAssigned: release target has no assignment row.
	ErrNotAssigned = errors.New("asiento no asignado")
	// ErrForbidden: a registro may only release its own seat.
	ErrForbidden = errors.New("solo puedes liberar tu propio asiento")
)

// OccupantKind discriminates the state of a seat.
type OccupantKind int

const (
	// OccupantEmpty: no assignment row; a fresh physical seat.
	OccupantEmpty OccupantKind = iota
	// OccupantOpenSlot: a row reserving the seat for whichever member of a
	// category claims it first.
	OccupantOpenSlot
	// OccupantHeld: a row binding the seat to a specific registro.
	OccupantHeld
)

// Occupant is the decoded state of a seat. The legacy rows encode open slots
// with sentinel guest names and a null registro_id; decoding once here keeps
// the string comparisons out of the rule logic.
type Occupant struct {
	Kind       OccupantKind
	Categoria  string
	RegistroID uuid.UUID
	Nombre     string
}

// DecodeOccupant maps an assignment row (or its absence) to an Occupant.
func DecodeOccupant(a *models.Assignment) Occupant {
	if a == nil {
		return Occupant{Kind: OccupantEmpty}
	}
	if a.IsOpenSlot() {
		return Occupant{Kind: OccupantOpenSlot, Categoria: a.Categoria}
	}
	return Occupant{
		Kind:       OccupantHeld,
		Categoria:  a.Categoria,
		RegistroID: *a.RegistroID,
		Nombre:     a.NombreInvitado,
	}
}

// Requester is the identity a claim or release is evaluated against.
type Requester struct {
	ID        uuid.UUID
	Nombre    string
	Categoria string
}

// Policy says which categories keep their seat as a reusable open slot when
// the holder walks away. Historically this was hard-coded per endpoint; it is
// configuration now.
type Policy struct {
	reusable map[string]bool
}

// NewPolicy builds a Policy from the configured slot categories.
func NewPolicy(categories []string) Policy {
	m := make(map[string]bool, len(categories))
	for _, c := range categories {
		m[c] = true
	}
	return Policy{reusable: m}
}

// Reusable reports whether seats of the category revert to an open slot.
func (p Policy) Reusable(categoria string) bool {
	return p.reusable[categoria]
}

// ClaimPlan describes the mutations a granted claim must perform. The
// executor runs the whole plan inside a single transaction.
type ClaimPlan struct {
	// ReplaceTarget: the target seat already has a row (an open slot of the
	// requester's category, or the requester's own) that the new binding
	// overwrites. False means a plain insert on a fresh seat.
	ReplaceTarget bool
	// RevertPrevious: the requester's previous seat in this event, if any,
	// becomes an open slot of the requester's category. False means the
	// previous row is deleted outright.
	RevertPrevious bool
}

// DecideClaim evaluates a claim of a seat whose current row is existing
// (nil when the seat has no row). It returns ErrSeatUnavailable when the seat
// is held by someone else or its slot category does not match.
func DecideClaim(p Policy, existing *models.Assignment, req Requester) (ClaimPlan, error) {
	plan := ClaimPlan{RevertPrevious: p.Reusable(req.Categoria)}
	occ := DecodeOccupant(existing)
	switch occ.Kind {
	case OccupantEmpty:
		return plan, nil
	case OccupantOpenSlot:
		if occ.Categoria != req.Categoria {
			return ClaimPlan{}, ErrSeatUnavailable
		}
		plan.ReplaceTarget = true
		return plan, nil
	default: // OccupantHeld
		if occ.RegistroID != req.ID {
			return ClaimPlan{}, ErrSeatUnavailable
		}
		// Re-confirming one's own seat.
		plan.ReplaceTarget = true
		return plan, nil
	}
}

// ReleasePlan describes the mutation a granted release must perform.
type ReleasePlan struct {
	// Revert: the row becomes an open slot of the holder's category instead of
	// being deleted.
	Revert bool
}

// DecideRelease evaluates a release of a seat whose current row is existing.
func DecideRelease(p Policy, existing *models.Assignment, req Requester) (ReleasePlan, error) {
	if existing == nil {
		return ReleasePlan{}, ErrNotAssigned
	}
	if existing.RegistroID == nil || *existing.RegistroID != req.ID {
		return ReleasePlan{}, ErrForbidden
	}
	return ReleasePlan{Revert: p.Reusable(req.Categoria)}, nil
}
