package pcb

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/fabexport/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root := sexps[0]
	rootName, err := nodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" || root.IsLeaf() {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if generalNode, found := findNode(root, "general"); found {
		general, err := parseGeneral(generalNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse general section: %w", err)
		}
		board.General = *general
	}
	if titleNode, found := findNode(root, "title_block"); found {
		readTitleFields(titleNode, &board.General)
	}

	if layersNode, found := findNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	if setupNode, found := findNode(root, "setup"); found {
		setup, err := parseSetup(setupNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse setup section: %w", err)
		}
		board.Setup = *setup
	}

	footprints, err := parseFootprints(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}
	board.Footprints = footprints

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := findNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := getInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := findNode(root, "host"); found {
		// (host pcbnew "(6.0.0)")
		if name, err := getString(hostNode, 1); err == nil {
			gen = name
		}
	} else if genNode, found := findNode(root, "generator"); found {
		if name, err := getString(genNode, 1); err == nil {
			gen = name
		}
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties
// Expected format: (general (thickness 1.6) (title "Board") ...)
func parseGeneral(node kicadsexp.Sexp) (*General, error) {
	general := &General{}

	if thicknessNode, found := findNode(node, "thickness"); found {
		thickness, err := getFloat(thicknessNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse thickness: %w", err)
		}
		general.Thickness = thickness
	}

	readTitleFields(node, general)

	return general, nil
}

// readTitleFields copies title/date/rev/company from node into general.
// KiCad 6+ keeps these in (title_block ...), older files in (general ...).
func readTitleFields(node kicadsexp.Sexp, general *General) {
	fields := map[string]*string{
		"title":   &general.Title,
		"date":    &general.Date,
		"rev":     &general.Revision,
		"company": &general.Company,
	}
	for key, dst := range fields {
		if n, found := findNode(node, key); found {
			if v, err := getString(n, 1); err == nil {
				*dst = v
			}
		}
	}
}

// parseLayers extracts the layer table
// Expected format: (layers (0 "F.Cu" signal) (36 "B.SilkS" user "B.Silkscreen") ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	layerNodes := listItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer
	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		number, err := getInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}
		name, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}
		layerType, err := getString(layerNode, 2)
		if err != nil {
			layerType = "user"
		}
		userName, _ := getString(layerNode, 3)

		layers = append(layers, Layer{
			Number:   number,
			Name:     name,
			Type:     layerType,
			UserName: userName,
		})
	}

	return layers, nil
}

// parseSetup extracts the origins from (setup ...)
// Expected format: (setup ... (aux_axis_origin 100 80) (grid_origin 50 50))
func parseSetup(node kicadsexp.Sexp) (*Setup, error) {
	setup := &Setup{}

	if n, found := findNode(node, "aux_axis_origin"); found {
		pos, err := getXY(n)
		if err != nil {
			return nil, fmt.Errorf("failed to parse aux_axis_origin: %w", err)
		}
		setup.AuxAxisOrigin = pos
	}
	if n, found := findNode(node, "grid_origin"); found {
		pos, err := getXY(n)
		if err != nil {
			return nil, fmt.Errorf("failed to parse grid_origin: %w", err)
		}
		setup.GridOrigin = pos
	}

	return setup, nil
}
