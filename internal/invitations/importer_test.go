package invitations

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/auditorio-asientos/backend/internal/models"
)

func TestDecideImport(t *testing.T) {
	assert.Equal(t, ImportInsert, DecideImport(nil), "unseen email inserts")

	reserved := &models.Registro{InvitationStatus: models.InvitationReserved}
	assert.Equal(t, ImportSkip, DecideImport(reserved), "a reserved invitation keeps its committed seat")

	for _, status := range []string{
		models.InvitationPending,
		models.InvitationSent,
		models.InvitationOpened,
		models.InvitationExpired,
		models.InvitationCancelled,
	} {
		assert.Equal(t, ImportUpdate, DecideImport(&models.Registro{InvitationStatus: status}), status)
	}
}

func TestParseRosterCSV(t *testing.T) {
	csv := strings.Join([]string{
		"nombre,correo,categoria,departamento",
		"Ana Pérez,ana@uni.edu,docente,Matemáticas",
		"Luis Gómez,LUIS@uni.edu,invitado,",
		"  Marta   Ruiz ,marta@uni.edu,,Física",
	}, "\n")

	result, err := ParseRoster("roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Valid)
	assert.Equal(t, 0, result.Invalid)
	require.Len(t, result.Rows, 3)

	assert.Equal(t, "luis@uni.edu", result.Rows[1].Correo, "emails are lowercased")
	assert.Equal(t, "Marta Ruiz", result.Rows[2].Nombre, "names collapse whitespace")
	assert.Equal(t, "docente", result.Rows[2].Categoria, "empty category defaults to docente")
}

func TestParseRosterDuplicateEmailLastWins(t *testing.T) {
	csv := strings.Join([]string{
		"nombre,correo,categoria",
		"Ana Pérez,ana@uni.edu,docente",
		"Luis Gómez,luis@uni.edu,invitado",
		"Ana P. Pérez,ANA@uni.edu,estudiante",
	}, "\n")

	result, err := ParseRoster("roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.DuplicatesInFile)
	require.Len(t, result.Rows, 2)
	// Last row for the email wins but keeps its first-seen position.
	assert.Equal(t, "Ana P. Pérez", result.Rows[0].Nombre)
	assert.Equal(t, "estudiante", result.Rows[0].Categoria)
	assert.Equal(t, "Luis Gómez", result.Rows[1].Nombre)
}

func TestParseRosterRejectsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		"nombre,correo,categoria",
		",ana@uni.edu,docente",
		"Luis Gómez,not-an-email,docente",
		"Marta Ruiz,marta@uni.edu,bloqueado",
		"Pedro Soto,pedro@uni.edu,alienígena",
	}, "\n")

	result, err := ParseRoster("roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 0, result.Valid)
	assert.Equal(t, 4, result.Invalid)
	require.Len(t, result.Errors, 4)
	// Row numbers match what the person sees in their spreadsheet.
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 5, result.Errors[3].Row)
}

func TestParseRosterHeaderAliases(t *testing.T) {
	csv := strings.Join([]string{
		"Name,E-mail,Category,Department",
		"Ana Pérez,ana@uni.edu,docente,Matemáticas",
	}, "\n")

	result, err := ParseRoster("roster.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Ana Pérez", result.Rows[0].Nombre)
	assert.Equal(t, "Matemáticas", result.Rows[0].Departamento)
}

func TestParseRosterXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"nombre", "correo", "categoria"},
		{"Ana Pérez", "ana@uni.edu", "docente"},
		{"Luis Gómez", "luis@uni.edu", "invitado"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	result, err := ParseRoster("roster.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Valid)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "luis@uni.edu", result.Rows[1].Correo)
}

func TestParseRosterEmptyFile(t *testing.T) {
	result, err := ParseRoster("roster.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Rows)
}
