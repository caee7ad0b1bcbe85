// Package fab turns a board into fabrication outputs: Gerber and drill files
// through a host plotting backend, plus bill-of-materials and XY placement
// CSV tables built from the board's components.
package fab

// Component is a host-neutral, read-only view of one placed footprint.
type Component struct {
	Reference string // Designator, e.g. "R1"
	Value     string
	Package   string  // Library item name without the library nickname
	X, Y      float64 // Position in mm
	Rotation  float64 // Degrees
	Flipped   bool    // Mounted on the back side

	ExcludeFromBOM      bool
	ExcludeFromPosFiles bool
	DNP                 bool
}

// Board side labels written to the placement table.
const (
	SideTop    = "Top"
	SideBottom = "Bottom"
)

// SideLabel maps the flipped flag to a side label. The legacy mapping writes
// "Top" for flipped footprints and "Bottom" otherwise; conventional selects
// the KiCad convention (flipped means bottom).
func SideLabel(flipped, conventional bool) string {
	if conventional {
		flipped = !flipped
	}
	if flipped {
		return SideTop
	}
	return SideBottom
}
