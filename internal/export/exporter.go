package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/auditorio-asientos/backend/internal/models"
)

// categoryFills mirrors the frontend palette so the workbook map matches the
// on-screen one.
var categoryFills = map[string]string{
	models.CategoriaAutoridad:  "4F46E5",
	models.CategoriaDocente:    "0EA5E9",
	models.CategoriaInvitado:   "10B981",
	models.CategoriaEstudiante: "F97316",
	models.CategoriaBloqueado:  "312E81",
}

const (
	headerFill       = "002E45"
	openSlotFill     = "E2E8F0"
	sheetAssignments = "Asignaciones"
	sheetMap         = "Mapa Visual"
)

// Exporter builds the XLSX workbook for a set of assignments.
type Exporter struct{}

func NewExporter() *Exporter { return &Exporter{} }

// Build renders the workbook. The caller owns the returned file and must
// Close it after writing.
func (e *Exporter) Build(eventName string, assignments []models.Assignment) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetAssignments)
	if err := e.writeAssignments(f, assignments); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeMap(f, eventName, assignments); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (e *Exporter) writeAssignments(f *excelize.File, assignments []models.Assignment) error {
	headers := []string{"Seat ID", "Nombre Invitado", "Categoría", "Fila", "Número", "Sección"}
	widths := []float64{15, 42, 16, 10, 10, 25}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetAssignments, col, col, w); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetAssignments, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetAssignments, "A1", "F1", headerStyle); err != nil {
		return err
	}

	sorted := make([]models.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SeatID < sorted[j].SeatID })

	for i, a := range sorted {
		row := i + 2
		ref, err := ParseSeatID(a.SeatID)
		if err != nil {
			// Seat ids come from the venue layout; tolerate strays rather
			// than failing the whole export.
			ref = SeatRef{Label: a.SeatID}
		}
		values := []interface{}{a.SeatID, a.NombreInvitado, a.Categoria, ref.Label, ref.Numero, ref.SectionLabel}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetAssignments, cell, v); err != nil {
				return err
			}
		}
	}

	if len(sorted) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), len(sorted)+1)
		enable := true
		if err := f.AddTable(sheetAssignments, &excelize.Table{
			Range:          "A1:" + lastCell,
			Name:           "TablaAsignaciones",
			StyleName:      "TableStyleMedium2",
			ShowRowStripes: &enable,
		}); err != nil {
			return err
		}
	}
	return f.SetPanes(sheetAssignments, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}

func (e *Exporter) writeMap(f *excelize.File, eventName string, assignments []models.Assignment) error {
	if _, err := f.NewSheet(sheetMap); err != nil {
		return err
	}

	byID := make(map[string]models.Assignment, len(assignments))
	for _, a := range assignments {
		byID[a.SeatID] = a
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheetMap, "A1", eventName+" — Mapa de Asientos"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetMap, "A1", "A1", titleStyle); err != nil {
		return err
	}

	seatStyles := make(map[string]int, len(categoryFills)+1)
	for cat, fill := range categoryFills {
		style, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Color: "FFFFFF", Size: 8},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return err
		}
		seatStyles[cat] = style
	}
	openStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{openSlotFill}},
		Font:      &excelize.Font{Size: 8},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rowCursor := 3
	for _, rc := range Rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, rowCursor)
		if err := f.SetCellValue(sheetMap, labelCell, rc.Label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetMap, labelCell, labelCell, labelStyle); err != nil {
			return err
		}

		col := 2
		for _, seatID := range rowSeatIDs(rc) {
			cell, _ := excelize.CoordinatesToCellName(col, rowCursor)
			a, taken := byID[seatID]
			switch {
			case taken && a.IsOpenSlot():
				if err := f.SetCellValue(sheetMap, cell, "·"); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheetMap, cell, cell, openStyle); err != nil {
					return err
				}
			case taken:
				if err := f.SetCellValue(sheetMap, cell, initials(a.NombreInvitado)); err != nil {
					return err
				}
				if style, ok := seatStyles[a.Categoria]; ok {
					if err := f.SetCellStyle(sheetMap, cell, cell, style); err != nil {
						return err
					}
				}
			}
			col++
		}
		rowCursor++
	}

	// Legend below the grid.
	rowCursor += 2
	order := []string{
		models.CategoriaAutoridad,
		models.CategoriaDocente,
		models.CategoriaInvitado,
		models.CategoriaEstudiante,
		models.CategoriaBloqueado,
	}
	for _, cat := range order {
		swatch, _ := excelize.CoordinatesToCellName(1, rowCursor)
		name, _ := excelize.CoordinatesToCellName(2, rowCursor)
		if err := f.SetCellStyle(sheetMap, swatch, swatch, seatStyles[cat]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetMap, name, cat); err != nil {
			return err
		}
		rowCursor++
	}
	return nil
}

func rowSeatIDs(rc RowConfig) []string {
	var ids []string
	switch {
	case rc.Type == "center":
		for i := 1; i <= rc.Center; i++ {
			ids = append(ids, fmt.Sprintf("%s-C-%d", rc.ID, i))
		}
	case rc.Type == "wing":
		for i := 1; i <= rc.Left; i++ {
			ids = append(ids, fmt.Sprintf("%s-WL-%d", rc.ID, i))
		}
		for i := 1; i <= rc.Right; i++ {
			ids = append(ids, fmt.Sprintf("%s-WR-%d", rc.ID, i))
		}
	default:
		for i := 1; i <= rc.Left; i++ {
			ids = append(ids, fmt.Sprintf("%s-L-%d", rc.ID, i))
		}
		for i := 1; i <= rc.Right; i++ {
			ids = append(ids, fmt.Sprintf("%s-R-%d", rc.ID, i))
		}
	}
	return ids
}

func initials(name string) string {
	out := make([]rune, 0, 3)
	prev := ' '
	for _, r := range name {
		if prev == ' ' && r != ' ' && len(out) < 3 {
			out = append(out, r)
		}
		prev = r
	}
	return string(out)
}
