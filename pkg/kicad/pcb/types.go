package pcb

// Position is a 2D coordinate in millimetres. KiCad 6+ board files store
// coordinates in mm already, so no unit conversion happens while parsing.
type Position struct {
	X float64
	Y float64
}

// Angle is a rotation in degrees.
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// Board is the subset of a KiCad PCB needed for fabrication output.
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer table (only enabled layers appear here)
	Setup      Setup       // Board setup
	Footprints []Footprint // Component footprints
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string
	Date      string
	Revision  string
	Company   string
}

// Setup holds the board origins used by plot and drill output.
type Setup struct {
	AuxAxisOrigin Position
	GridOrigin    Position
}

// Layer is one row of the board layer table.
type Layer struct {
	Number   int    // Layer ordinal
	Name     string // Canonical name (e.g., "F.Cu", "B.SilkS")
	Type     string // signal, power, mixed, jumper, user
	UserName string // Optional display name (e.g., "B.Silkscreen")
}

// IsCopper reports whether the layer carries copper.
func (l Layer) IsCopper() bool {
	switch l.Type {
	case "signal", "power", "mixed", "jumper":
		return true
	}
	return false
}

// Side of the board a footprint is mounted on.
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// Attributes mirror the footprint (attr ...) flags.
type Attributes struct {
	Type                string // smd, through_hole, or empty for unspecified
	BoardOnly           bool
	ExcludeFromPosFiles bool
	ExcludeFromBOM      bool
	DNP                 bool
}

// Footprint represents a placed component
type Footprint struct {
	Library    string        // Library nickname ("Resistor_SMD")
	Name       string        // Library item name ("R_0402_1005Metric")
	Layer      string        // F.Cu or B.Cu
	Position   PositionAngle // Position in mm, rotation in degrees
	Reference  string        // Reference designator (e.g., "R1")
	Value      string        // Component value
	Attributes Attributes
	Locked     bool
	PadCount   int
}

// Side reports which side the footprint is placed on.
func (f Footprint) Side() Side {
	if f.Layer == "B.Cu" {
		return Back
	}
	return Front
}

// IsFlipped reports whether the footprint has been flipped to the back.
func (f Footprint) IsFlipped() bool {
	return f.Side() == Back
}

// LibID returns the full "library:name" identifier.
func (f Footprint) LibID() string {
	if f.Library == "" {
		return f.Name
	}
	return f.Library + ":" + f.Name
}
