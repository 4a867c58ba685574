// Package export renders an event's roster as a styled XLSX workbook for the
// protocol team: a flat "Asignaciones" sheet plus a color-coded "Mapa Visual"
// of the auditorium.
package export

import (
	"fmt"
	"strconv"
	"strings"
)

// RowConfig describes one physical row of the auditorium.
type RowConfig struct {
	ID     string
	Label  string
	Left   int
	Right  int
	Center int
	Type   string // "", "wing", "cabin-flank", "center"
}

// Rows is the venue layout, top (stage-far) to bottom.
var Rows = []RowConfig{
	{ID: "W", Label: "W", Left: 14, Right: 14, Type: "wing"},
	{ID: "CB", Label: "K", Left: 9, Right: 9, Type: "cabin-flank"},
	{ID: "R17", Label: "J", Left: 17, Right: 17},
	{ID: "R16", Label: "I", Left: 17, Right: 17},
	{ID: "R15", Label: "H", Left: 16, Right: 16},
	{ID: "R14", Label: "G", Left: 16, Right: 16},
	{ID: "R13", Label: "F", Left: 15, Right: 15},
	{ID: "R12", Label: "E", Left: 14, Right: 14},
	{ID: "R11", Label: "D", Left: 14, Right: 14},
	{ID: "R10", Label: "C", Left: 13, Right: 13},
	{ID: "R9", Label: "B", Left: 13, Right: 13},
	{ID: "R8", Label: "A", Left: 10, Right: 10},
	{ID: "C1", Label: "C1", Center: 9, Type: "center"},
}

var sectionLabels = map[string]string{
	"L":  "Izquierda",
	"R":  "Derecha",
	"C":  "Centro",
	"WL": "Ala Izq",
	"WR": "Ala Der",
}

// SeatRef is a parsed seat identifier (row, section, index).
type SeatRef struct {
	RowID        string
	Section      string
	Numero       int
	Label        string
	SectionLabel string
}

// ParseSeatID decodes a composite seat id like "R8-L-3".
func ParseSeatID(seatID string) (SeatRef, error) {
	parts := strings.Split(seatID, "-")
	if len(parts) != 3 {
		return SeatRef{}, fmt.Errorf("malformed seat id %q", seatID)
	}
	num, err := strconv.Atoi(parts[2])
	if err != nil {
		return SeatRef{}, fmt.Errorf("malformed seat number in %q", seatID)
	}
	ref := SeatRef{RowID: parts[0], Section: parts[1], Numero: num}
	ref.Label = ref.RowID
	for _, r := range Rows {
		if r.ID == ref.RowID {
			ref.Label = r.Label
			break
		}
	}
	ref.SectionLabel = ref.Section
	if label, ok := sectionLabels[ref.Section]; ok {
		ref.SectionLabel = label
	}
	return ref, nil
}

// GenerateAllSeatIDs returns every seat id of the venue in layout order.
func GenerateAllSeatIDs() []string {
	var ids []string
	for _, row := range Rows {
		switch {
		case row.Type == "center":
			for i := 1; i <= row.Center; i++ {
				ids = append(ids, fmt.Sprintf("%s-C-%d", row.ID, i))
			}
		case row.Type == "wing":
			for i := 1; i <= row.Left; i++ {
				ids = append(ids, fmt.Sprintf("%s-WL-%d", row.ID, i))
			}
			for i := 1; i <= row.Right; i++ {
				ids = append(ids, fmt.Sprintf("%s-WR-%d", row.ID, i))
			}
		default:
			for i := 1; i <= row.Left; i++ {
				ids = append(ids, fmt.Sprintf("%s-L-%d", row.ID, i))
			}
			for i := 1; i <= row.Right; i++ {
				ids = append(ids, fmt.Sprintf("%s-R-%d", row.ID, i))
			}
		}
	}
	return ids
}
