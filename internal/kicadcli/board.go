// Package kicadcli implements the fab host capabilities for KiCad: the board
// model comes from parsing the .kicad_pcb file, plotting and drilling are
// delegated to the kicad-cli executable.
package kicadcli

import (
	"fmt"
	"path/filepath"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"github.com/OpenTraceLab/fabexport/pkg/kicad/pcb"
)

// Board adapts a parsed KiCad board to fab.Board.
type Board struct {
	file  string
	board *pcb.Board
}

// OpenBoard parses the board file at path.
func OpenBoard(path string) (*Board, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve board path: %w", err)
	}
	b, err := pcb.ParseFile(abs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(abs), err)
	}
	return NewBoard(abs, b), nil
}

// NewBoard wraps an already parsed board saved at file.
func NewBoard(file string, b *pcb.Board) *Board {
	return &Board{file: file, board: b}
}

func (b *Board) FileName() string { return b.file }

// PCB exposes the underlying board model.
func (b *Board) PCB() *pcb.Board { return b.board }

func (b *Board) IsLayerEnabled(layer string) bool {
	return b.board.IsLayerEnabled(layer)
}

func (b *Board) Components() []fab.Component {
	out := make([]fab.Component, 0, len(b.board.Footprints))
	for _, fp := range b.board.Footprints {
		out = append(out, fab.Component{
			Reference:           fp.Reference,
			Value:               fp.Value,
			Package:             fp.Name,
			X:                   fp.Position.X,
			Y:                   fp.Position.Y,
			Rotation:            float64(fp.Position.Angle),
			Flipped:             fp.IsFlipped(),
			ExcludeFromBOM:      fp.Attributes.ExcludeFromBOM,
			ExcludeFromPosFiles: fp.Attributes.ExcludeFromPosFiles,
			DNP:                 fp.Attributes.DNP,
		})
	}
	return out
}
