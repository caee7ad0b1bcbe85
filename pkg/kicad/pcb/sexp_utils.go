package pcb

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/fabexport/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// items returns the elements of a list node, or nil for atoms.
func items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if list, ok := s.(*kicadsexp.List); ok {
		return list.Items()
	}
	return nil
}

// nodeName returns the leading symbol of a list (the node type/name).
func nodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil node")
	}
	if sym, ok := s.(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at head of list")
}

// findNode returns the first child list whose head is key.
// Example: findNode(sexp, "at") finds (at 100 50) in a list
func findNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range items(s) {
		if item.IsLeaf() {
			continue
		}
		if name, err := nodeName(item); err == nil && name == key {
			return item, true
		}
	}
	return nil, false
}

// findAllNodes returns every child list whose head is key.
func findAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range items(s) {
		if item.IsLeaf() {
			continue
		}
		if name, err := nodeName(item); err == nil && name == key {
			results = append(results, item)
		}
	}
	return results
}

// listItems returns the elements after the key.
// Example: listItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func listItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	all := items(s)
	if len(all) <= 1 {
		return nil
	}
	return all[1:]
}

// hasSymbol reports whether a bare symbol appears directly inside the list.
func hasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// Typed value extraction helpers. Index 0 is the key, 1 is the first value.

func getString(s kicadsexp.Sexp, index int) (string, error) {
	all := items(s)
	if all == nil {
		return "", fmt.Errorf("expected list, got leaf")
	}
	if index < 0 || index >= len(all) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(all))
	}
	sym, ok := all[index].(kicadsexp.Symbol)
	if !ok {
		return "", fmt.Errorf("expected symbol at index %d, got list", index)
	}
	return string(sym), nil
}

func getFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	return val, nil
}

func getInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// getXY reads (keyword X Y) into a Position.
func getXY(s kicadsexp.Sexp) (Position, error) {
	x, err := getFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err := getFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}
	return Position{X: x, Y: y}, nil
}

// getPositionAngle reads (at X Y [angle]); the angle defaults to 0.
func getPositionAngle(s kicadsexp.Sexp) (PositionAngle, error) {
	pos, err := getXY(s)
	if err != nil {
		return PositionAngle{}, err
	}
	result := PositionAngle{Position: pos}
	if angle, err := getFloat(s, 3); err == nil {
		result.Angle = Angle(angle)
	}
	return result, nil
}
