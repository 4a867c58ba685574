package export

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditorio-asientos/backend/internal/models"
)

func TestParseSeatID(t *testing.T) {
	ref, err := ParseSeatID("R8-L-3")
	require.NoError(t, err)
	assert.Equal(t, "R8", ref.RowID)
	assert.Equal(t, "A", ref.Label)
	assert.Equal(t, 3, ref.Numero)
	assert.Equal(t, "Izquierda", ref.SectionLabel)

	ref, err = ParseSeatID("W-WR-14")
	require.NoError(t, err)
	assert.Equal(t, "W", ref.Label)
	assert.Equal(t, "Ala Der", ref.SectionLabel)

	ref, err = ParseSeatID("CB-L-1")
	require.NoError(t, err)
	assert.Equal(t, "K", ref.Label)
}

func TestParseSeatIDMalformed(t *testing.T) {
	_, err := ParseSeatID("R8-L")
	assert.Error(t, err)
	_, err = ParseSeatID("R8-L-x")
	assert.Error(t, err)
}

func TestGenerateAllSeatIDs(t *testing.T) {
	ids := GenerateAllSeatIDs()

	want := 0
	for _, r := range Rows {
		want += r.Left + r.Right + r.Center
	}
	assert.Len(t, ids, want)

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate seat id %s", id)
		seen[id] = true
		_, err := ParseSeatID(id)
		assert.NoError(t, err)
	}
	assert.True(t, seen["C1-C-9"])
	assert.True(t, seen["W-WL-1"])
}

func TestBuildWorkbook(t *testing.T) {
	regID := uuid.New()
	assignments := []models.Assignment{
		{SeatID: "R8-L-1", NombreInvitado: "Ana Pérez", Categoria: models.CategoriaDocente, RegistroID: &regID, AssignedAt: time.Now()},
		{SeatID: "R8-L-2", NombreInvitado: models.SlotCupoDisponible, Categoria: models.CategoriaInvitado},
		{SeatID: "C1-C-1", NombreInvitado: "Rector Díaz", Categoria: models.CategoriaAutoridad, RegistroID: &regID},
	}

	f, err := NewExporter().Build("Graduación 2026", assignments)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), sheetAssignments)
	assert.Contains(t, f.GetSheetList(), sheetMap)

	// Rows come out sorted by seat id under the header.
	v, err := f.GetCellValue(sheetAssignments, "A2")
	require.NoError(t, err)
	assert.Equal(t, "C1-C-1", v)

	v, err = f.GetCellValue(sheetAssignments, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", v)

	v, err = f.GetCellValue(sheetAssignments, "D3")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	title, err := f.GetCellValue(sheetMap, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "Graduación 2026")
}

func TestBuildWorkbookEmpty(t *testing.T) {
	f, err := NewExporter().Build("Evento Vacío", nil)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetAssignments, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Seat ID", v)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AP", initials("Ana Pérez"))
	assert.Equal(t, "RDL", initials("Rector Díaz de León"))
	assert.Equal(t, "", initials(""))
}
