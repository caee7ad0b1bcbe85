package fab

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// PlacementHeader is the header row of the XY placement table.
var PlacementHeader = []string{"Designator", "Valor", "Paquete", "PosX(mm)", "PosY(mm)", "Rotación", "Capa"}

// PlacementRow is one component in the XY placement table.
type PlacementRow struct {
	Designator string
	Value      string
	Package    string
	X, Y       float64 // mm, two decimals
	Rotation   float64 // degrees, one decimal
	Side       string
}

// Record returns the CSV record for the row.
func (r PlacementRow) Record() []string {
	return []string{
		r.Designator,
		r.Value,
		r.Package,
		FormatNumber(r.X),
		FormatNumber(r.Y),
		FormatNumber(r.Rotation),
		r.Side,
	}
}

// PlacementOptions control the placement table.
type PlacementOptions struct {
	ConventionalSides bool // flipped footprints are "Bottom"
	SkipExcluded      bool // drop components flagged exclude_from_pos_files
}

// Placements builds one row per component in board order.
func Placements(components []Component, opts PlacementOptions) []PlacementRow {
	rows := make([]PlacementRow, 0, len(components))
	for _, c := range components {
		if opts.SkipExcluded && c.ExcludeFromPosFiles {
			continue
		}
		rows = append(rows, PlacementRow{
			Designator: c.Reference,
			Value:      c.Value,
			Package:    c.Package,
			X:          Round(c.X, 2),
			Y:          Round(c.Y, 2),
			Rotation:   Round(c.Rotation, 1),
			Side:       SideLabel(c.Flipped, opts.ConventionalSides),
		})
	}
	return rows
}

// WritePlacements writes the header and one record per row.
func WritePlacements(w io.Writer, rows []PlacementRow) error {
	cw := newCSVWriter(w)
	if err := cw.Write(PlacementHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Round rounds v half away from zero to the given number of decimal places.
// It works on the shortest decimal representation of v, so 90.05 rounds to
// 90.1 even though its binary value sits just below the midpoint.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || places < 0 {
		return v
	}

	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) <= places {
		return v
	}

	digits := []byte(intPart + frac[:places])
	if frac[places] >= '5' {
		digits = incrementDigits(digits)
	}

	// Re-insert the decimal point.
	point := len(digits) - places
	out := string(digits[:point])
	if places > 0 {
		out += "." + string(digits[point:])
	}

	r, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return v
	}
	if neg && r != 0 {
		r = -r
	}
	return r
}

// incrementDigits adds one to a decimal digit string, carrying as needed.
func incrementDigits(d []byte) []byte {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i] < '9' {
			d[i]++
			return d
		}
		d[i] = '0'
	}
	return append([]byte{'1'}, d...)
}

// FormatNumber writes v in its shortest decimal form with at least one
// fractional digit: 4.5, 90.0, 1.23. Negative zero is written as 0.0.
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}
