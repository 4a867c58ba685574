// Package invitations implements roster import (preview/confirm) and
// invitation email campaigns for an event.
package invitations

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/auditorio-asientos/backend/internal/models"
)

// InviteRow is one normalized roster row ready for import.
type InviteRow struct {
	Nombre       string `json:"nombre"`
	Correo       string `json:"correo"`
	Categoria    string `json:"categoria"`
	Departamento string `json:"departamento,omitempty"`
}

// RowError reports a rejected roster line. Row is 1-based counting the
// header, so the first data line is row 2 (what people see in Excel).
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// PreviewResult summarizes a parsed roster upload.
type PreviewResult struct {
	Total            int         `json:"total"`
	Valid            int         `json:"valid"`
	Invalid          int         `json:"invalid"`
	DuplicatesInFile int         `json:"duplicates_in_file"`
	Rows             []InviteRow `json:"rows"`
	Errors           []RowError  `json:"errors"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ImportAction is what a confirm does with one roster row.
type ImportAction int

const (
	// ImportInsert: unseen email, create a registro with a fresh token.
	ImportInsert ImportAction = iota
	// ImportUpdate: known email, refresh the mutable roster fields.
	ImportUpdate
	// ImportSkip: the invitation is already reserved; the committed seat and
	// its registro data survive a re-import untouched.
	ImportSkip
)

// DecideImport maps the registro currently stored for a row's email (nil when
// unseen) to the action the confirm performs.
func DecideImport(existing *models.Registro) ImportAction {
	switch {
	case existing == nil:
		return ImportInsert
	case existing.InvitationStatus == models.InvitationReserved:
		return ImportSkip
	default:
		return ImportUpdate
	}
}

// ParseRoster parses an uploaded roster. XLSX files go through excelize;
// anything else is treated as CSV.
func ParseRoster(filename string, r io.Reader) (*PreviewResult, error) {
	ext := strings.ToLower(filename)
	if strings.HasSuffix(ext, ".xlsx") || strings.HasSuffix(ext, ".xlsm") {
		return parseXLSX(r)
	}
	return parseCSV(r)
}

func parseXLSX(r io.Reader) (*PreviewResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return reconcileRows(records), nil
}

func parseCSV(r io.Reader) (*PreviewResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return reconcileRows(records), nil
}

// reconcileRows validates and normalizes raw records. Duplicate emails within
// the file collapse to the last-seen row.
func reconcileRows(records [][]string) *PreviewResult {
	result := &PreviewResult{Rows: []InviteRow{}, Errors: []RowError{}}
	if len(records) == 0 {
		return result
	}

	cols := headerIndex(records[0])
	byCorreo := make(map[string]InviteRow)
	var order []string

	for i, record := range records[1:] {
		line := i + 2
		result.Total++

		nombre := NormalizeName(field(record, cols["nombre"]))
		correo := NormalizeEmail(field(record, cols["correo"]))
		categoria := normalizeCategory(field(record, cols["categoria"]))
		departamento := strings.TrimSpace(field(record, cols["departamento"]))

		if nombre == "" {
			result.Errors = append(result.Errors, RowError{Row: line, Message: "nombre requerido"})
			continue
		}
		if correo == "" || !emailRe.MatchString(correo) {
			result.Errors = append(result.Errors, RowError{Row: line, Message: "correo inválido"})
			continue
		}
		if categoria == "" {
			result.Errors = append(result.Errors, RowError{Row: line, Message: "categoría inválida"})
			continue
		}

		row := InviteRow{Nombre: nombre, Correo: correo, Categoria: categoria, Departamento: departamento}
		if _, seen := byCorreo[correo]; seen {
			result.DuplicatesInFile++
		} else {
			order = append(order, correo)
		}
		byCorreo[correo] = row
	}

	for _, correo := range order {
		result.Rows = append(result.Rows, byCorreo[correo])
	}
	result.Valid = len(result.Rows)
	result.Invalid = len(result.Errors)
	return result
}

// headerIndex maps known column names (case-insensitive, with the common
// English/Spanish aliases people use in these files) to column positions.
func headerIndex(header []string) map[string]int {
	cols := map[string]int{"nombre": -1, "correo": -1, "categoria": -1, "departamento": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "nombre", "name":
			cols["nombre"] = i
		case "correo", "email", "e-mail":
			cols["correo"] = i
		case "categoria", "categoría", "category":
			cols["categoria"] = i
		case "departamento", "department":
			cols["departamento"] = i
		}
	}
	return cols
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// NormalizeEmail lowercases and trims an email for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName collapses inner whitespace and trims.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// normalizeCategory maps a raw category cell to a valid attendee category.
// An empty cell defaults to docente; "bloqueado" and unknown values are
// rejected.
func normalizeCategory(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		v = models.CategoriaDocente
	}
	if !models.ValidCategoria(v) {
		return ""
	}
	return v
}
