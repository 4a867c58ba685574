package seats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditorio-asientos/backend/internal/models"
)

func testPolicy() Policy {
	return NewPolicy([]string{models.CategoriaDocente, models.CategoriaInvitado, models.CategoriaEstudiante})
}

func openSlot(categoria string) *models.Assignment {
	return &models.Assignment{
		SeatID:         "R8-L-3",
		NombreInvitado: models.SlotCupoDisponible,
		Categoria:      categoria,
	}
}

func heldBy(id uuid.UUID, nombre, categoria string) *models.Assignment {
	return &models.Assignment{
		SeatID:         "R8-L-3",
		NombreInvitado: nombre,
		Categoria:      categoria,
		RegistroID:     &id,
	}
}

func TestDecodeOccupant(t *testing.T) {
	assert.Equal(t, OccupantEmpty, DecodeOccupant(nil).Kind)

	occ := DecodeOccupant(openSlot(models.CategoriaDocente))
	assert.Equal(t, OccupantOpenSlot, occ.Kind)
	assert.Equal(t, models.CategoriaDocente, occ.Categoria)

	id := uuid.New()
	occ = DecodeOccupant(heldBy(id, "Ana Pérez", models.CategoriaEstudiante))
	assert.Equal(t, OccupantHeld, occ.Kind)
	assert.Equal(t, id, occ.RegistroID)
	assert.Equal(t, "Ana Pérez", occ.Nombre)
}

func TestDecodeOccupantLegacyReservado(t *testing.T) {
	// Older events used "Reservado" as the open-slot marker.
	row := openSlot(models.CategoriaInvitado)
	row.NombreInvitado = models.SlotReservado
	assert.Equal(t, OccupantOpenSlot, DecodeOccupant(row).Kind)
}

func TestDecideClaimEmptySeat(t *testing.T) {
	p := testPolicy()
	req := Requester{ID: uuid.New(), Nombre: "Ana Pérez", Categoria: models.CategoriaDocente}

	plan, err := DecideClaim(p, nil, req)
	require.NoError(t, err)
	assert.False(t, plan.ReplaceTarget)
	assert.True(t, plan.RevertPrevious, "docente seats revert to open slots")
}

func TestDecideClaimOpenSlotSameCategory(t *testing.T) {
	p := testPolicy()
	req := Requester{ID: uuid.New(), Categoria: models.CategoriaInvitado}

	plan, err := DecideClaim(p, openSlot(models.CategoriaInvitado), req)
	require.NoError(t, err)
	assert.True(t, plan.ReplaceTarget)
}

func TestDecideClaimOpenSlotCategoryMismatch(t *testing.T) {
	p := testPolicy()
	req := Requester{ID: uuid.New(), Categoria: models.CategoriaEstudiante}

	_, err := DecideClaim(p, openSlot(models.CategoriaDocente), req)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestDecideClaimHeldByOther(t *testing.T) {
	p := testPolicy()
	req := Requester{ID: uuid.New(), Categoria: models.CategoriaDocente}
	other := heldBy(uuid.New(), "Luis Gómez", models.CategoriaDocente)

	_, err := DecideClaim(p, other, req)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestDecideClaimReconfirmOwnSeat(t *testing.T) {
	p := testPolicy()
	id := uuid.New()
	req := Requester{ID: id, Nombre: "Ana Pérez", Categoria: models.CategoriaDocente}

	plan, err := DecideClaim(p, heldBy(id, "Ana Pérez", models.CategoriaDocente), req)
	require.NoError(t, err)
	assert.True(t, plan.ReplaceTarget)
}

func TestDecideClaimNonReusableCategoryDeletesPrevious(t *testing.T) {
	p := testPolicy()
	req := Requester{ID: uuid.New(), Categoria: models.CategoriaAutoridad}

	plan, err := DecideClaim(p, nil, req)
	require.NoError(t, err)
	assert.False(t, plan.RevertPrevious, "autoridad seats do not become open slots")
}

func TestDecideReleaseNoRow(t *testing.T) {
	_, err := DecideRelease(testPolicy(), nil, Requester{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestDecideReleaseNotOwner(t *testing.T) {
	row := heldBy(uuid.New(), "Luis Gómez", models.CategoriaDocente)
	_, err := DecideRelease(testPolicy(), row, Requester{ID: uuid.New(), Categoria: models.CategoriaDocente})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDecideReleaseOpenSlot(t *testing.T) {
	// An open slot has no holder, so nobody can release it.
	_, err := DecideRelease(testPolicy(), openSlot(models.CategoriaDocente), Requester{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDecideReleaseRevertByCategory(t *testing.T) {
	p := testPolicy()
	id := uuid.New()

	plan, err := DecideRelease(p, heldBy(id, "Ana Pérez", models.CategoriaDocente),
		Requester{ID: id, Categoria: models.CategoriaDocente})
	require.NoError(t, err)
	assert.True(t, plan.Revert)

	plan, err = DecideRelease(p, heldBy(id, "Rector Díaz", models.CategoriaAutoridad),
		Requester{ID: id, Categoria: models.CategoriaAutoridad})
	require.NoError(t, err)
	assert.False(t, plan.Revert)
}

func TestPolicyUnknownCategory(t *testing.T) {
	p := NewPolicy(nil)
	assert.False(t, p.Reusable(models.CategoriaDocente))
}
