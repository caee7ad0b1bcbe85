package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/fabexport/pkg/kicad/sexp/kicadsexp"
)

// parseFootprint extracts a placed component
// Expected format: (footprint "library:name" [locked] (layer "F.Cu") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{}

	fpID, err := getString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	// Example: "Resistor_SMD:R_0603_1608Metric"
	if lib, name, found := strings.Cut(fpID, ":"); found && lib != "" {
		footprint.Library = lib
		footprint.Name = name
	} else {
		footprint.Name = fpID
	}

	footprint.Locked = hasSymbol(node, "locked")
	if n, found := findNode(node, "locked"); found {
		// KiCad 8 writes (locked yes)
		v, _ := getString(n, 1)
		footprint.Locked = v == "" || v == "yes"
	}

	layerNode, found := findNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	footprint.Layer, err = getString(layerNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}

	atNode, found := findNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	footprint.Position, err = getPositionAngle(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}

	// KiCad 7+: (property "Reference" "R1" ...)
	for _, propNode := range findAllNodes(node, "property") {
		name, err := getString(propNode, 1)
		if err != nil {
			continue
		}
		value, err := getString(propNode, 2)
		if err != nil {
			continue
		}
		switch name {
		case "Reference":
			footprint.Reference = value
		case "Value":
			footprint.Value = value
		}
	}

	// KiCad 6: (fp_text reference "R1" ...) and (fp_text value "10k" ...)
	for _, textNode := range findAllNodes(node, "fp_text") {
		kind, err := getString(textNode, 1)
		if err != nil {
			continue
		}
		text, err := getString(textNode, 2)
		if err != nil {
			continue
		}
		switch {
		case kind == "reference" && footprint.Reference == "":
			footprint.Reference = text
		case kind == "value" && footprint.Value == "":
			footprint.Value = text
		}
	}

	if attrNode, found := findNode(node, "attr"); found {
		footprint.Attributes = parseAttributes(attrNode)
	}
	// KiCad 8 also writes (dnp yes) outside of attr in some files.
	if n, found := findNode(node, "dnp"); found {
		v, _ := getString(n, 1)
		footprint.Attributes.DNP = v == "" || v == "yes"
	}

	footprint.PadCount = len(findAllNodes(node, "pad"))

	return footprint, nil
}

// parseAttributes reads (attr smd exclude_from_pos_files exclude_from_bom dnp)
func parseAttributes(node kicadsexp.Sexp) Attributes {
	var attrs Attributes
	for _, item := range listItems(node) {
		sym, ok := item.(kicadsexp.Symbol)
		if !ok {
			continue
		}
		switch string(sym) {
		case "smd", "through_hole":
			attrs.Type = string(sym)
		case "board_only":
			attrs.BoardOnly = true
		case "exclude_from_pos_files":
			attrs.ExcludeFromPosFiles = true
		case "exclude_from_bom":
			attrs.ExcludeFromBOM = true
		case "dnp":
			attrs.DNP = true
		}
	}
	return attrs
}

// parseFootprints extracts all footprint definitions from the root node,
// in file order.
func parseFootprints(root kicadsexp.Sexp) ([]Footprint, error) {
	footprintNodes := findAllNodes(root, "footprint")
	footprints := make([]Footprint, 0, len(footprintNodes))
	for i, fpNode := range footprintNodes {
		footprint, err := parseFootprint(fpNode)
		if err != nil {
			return nil, fmt.Errorf("footprint %d: %w", i, err)
		}
		footprints = append(footprints, *footprint)
	}

	return footprints, nil
}
