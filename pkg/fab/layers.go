package fab

import "strings"

// Layer is a board layer selected for Gerber output.
type Layer struct {
	Token       string // File name token, e.g. "F_Cu"
	Name        string // KiCad layer name, e.g. "F.Cu"
	Description string
}

// DefaultLayers is the fabrication layer set: copper, mask, silkscreen and
// outline, front before back.
func DefaultLayers() []Layer {
	return []Layer{
		{Token: "F_Cu", Name: "F.Cu", Description: "Top Copper"},
		{Token: "B_Cu", Name: "B.Cu", Description: "Bottom Copper"},
		{Token: "F_Mask", Name: "F.Mask", Description: "Top Solder Mask"},
		{Token: "B_Mask", Name: "B.Mask", Description: "Bottom Solder Mask"},
		{Token: "F_SilkS", Name: "F.SilkS", Description: "Top Silkscreen"},
		{Token: "B_SilkS", Name: "B.SilkS", Description: "Bottom Silkscreen"},
		{Token: "Edge_Cuts", Name: "Edge.Cuts", Description: "Board Outline"},
	}
}

// LayerToken derives the file name token for a KiCad layer name.
func LayerToken(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// EnabledLayers filters layers down to those the board reports as enabled,
// keeping their order.
func EnabledLayers(board Board, layers []Layer) []Layer {
	var out []Layer
	for _, l := range layers {
		if board.IsLayerEnabled(l.Name) {
			out = append(out, l)
		}
	}
	return out
}
