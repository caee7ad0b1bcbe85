package fab

import "context"

// Board is the part of the host board model the exporter reads.
type Board interface {
	// FileName is the absolute path of the board file.
	FileName() string
	// Components lists every placed footprint in board order.
	Components() []Component
	// IsLayerEnabled reports whether a KiCad layer (e.g. "F.Cu") is in use.
	IsLayerEnabled(layer string) bool
}

// Plotter plots individual layers into Gerber files.
type Plotter interface {
	// PlotLayer writes one Gerber file. false with a nil error means the
	// host declined to plot the layer.
	PlotLayer(ctx context.Context, layer Layer) (bool, error)
	Close() error
}

// DrillWriter produces the drill (and optionally drill map) files.
type DrillWriter interface {
	WriteDrillFiles(ctx context.Context, outputDir string) error
}

// Host creates plotters and drill writers for a board.
type Host interface {
	OpenPlotter(board Board, outputDir string, opts PlotOptions) (Plotter, error)
	NewDrillWriter(board Board, opts DrillOptions) (DrillWriter, error)
}

// PlotOptions configure Gerber plotting.
type PlotOptions struct {
	SketchPadLineWidth float64 // mm
	GerberAttributes   bool    // Gerber X2 attributes
	UseAuxOrigin       bool
}

// DrillOptions configure Excellon drill output.
type DrillOptions struct {
	MirrorY       bool
	MinimalHeader bool
	UseAuxOrigin  bool
	MergePTHNPTH  bool
	GenerateMap   bool
}

// DefaultPlotOptions returns the plot settings used for fabrication output.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		SketchPadLineWidth: 0.1,
		GerberAttributes:   true,
		UseAuxOrigin:       true,
	}
}

// DefaultDrillOptions returns the drill settings used for fabrication output.
func DefaultDrillOptions() DrillOptions {
	return DrillOptions{
		MinimalHeader: true,
		UseAuxOrigin:  true,
	}
}
