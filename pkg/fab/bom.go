package fab

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// BOMHeader is the header row of the bill of materials table.
var BOMHeader = []string{"Designator", "Value", "Package", "Quantity"}

// ComponentLine is one bill of materials row: every component sharing a
// value and package.
type ComponentLine struct {
	Designators []string
	Value       string
	Package     string
	Quantity    int
}

// Designator returns the designators joined as they appear in the table.
func (l ComponentLine) Designator() string {
	return strings.Join(l.Designators, ", ")
}

// Record returns the CSV record for the line.
func (l ComponentLine) Record() []string {
	return []string{l.Designator(), l.Value, l.Package, strconv.Itoa(l.Quantity)}
}

// BOMOptions control which components enter the bill of materials.
type BOMOptions struct {
	SkipExcluded bool // drop components flagged exclude_from_bom
	SkipDNP      bool // drop do-not-populate components
}

type bomKey struct {
	value, pkg string
}

// GroupBOM merges components with identical (value, package). Lines appear in
// the order their key was first seen; designators keep encounter order.
func GroupBOM(components []Component, opts BOMOptions) []ComponentLine {
	index := make(map[bomKey]int)
	var lines []ComponentLine

	for _, c := range components {
		if opts.SkipExcluded && c.ExcludeFromBOM {
			continue
		}
		if opts.SkipDNP && c.DNP {
			continue
		}

		key := bomKey{value: c.Value, pkg: c.Package}
		if i, ok := index[key]; ok {
			lines[i].Designators = append(lines[i].Designators, c.Reference)
			lines[i].Quantity++
			continue
		}
		index[key] = len(lines)
		lines = append(lines, ComponentLine{
			Designators: []string{c.Reference},
			Value:       c.Value,
			Package:     c.Package,
			Quantity:    1,
		})
	}

	return lines
}

// WriteBOM writes the header and one record per line.
func WriteBOM(w io.Writer, lines []ComponentLine) error {
	cw := newCSVWriter(w)
	if err := cw.Write(BOMHeader); err != nil {
		return err
	}
	for _, l := range lines {
		if err := cw.Write(l.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// newCSVWriter matches the dialect of spreadsheet tools: comma separated,
// CRLF line endings.
func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw
}
