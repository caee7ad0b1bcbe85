package fab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default output names, relative to the board file directory.
const (
	DefaultOutputDir     = "Fabricacion_PCB"
	DefaultBOMFile       = "BOM.csv"
	DefaultPlacementFile = "Posiciones_XY.csv"
)

// Options configure an Exporter.
type Options struct {
	OutputDir     string // Directory name next to the board file
	BOMFile       string
	PlacementFile string
	Layers        []Layer
	Plot          PlotOptions
	Drill         DrillOptions
	BOM           BOMOptions
	Placement     PlacementOptions
}

// DefaultOptions returns the standard fabrication export settings.
func DefaultOptions() Options {
	return Options{
		OutputDir:     DefaultOutputDir,
		BOMFile:       DefaultBOMFile,
		PlacementFile: DefaultPlacementFile,
		Layers:        DefaultLayers(),
		Plot:          DefaultPlotOptions(),
		Drill:         DefaultDrillOptions(),
	}
}

// Exporter runs the three export steps against a host.
type Exporter struct {
	host   Host
	opts   Options
	logger *zap.Logger
}

// NewExporter creates an exporter. A nil logger disables logging.
func NewExporter(host Host, opts Options, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{host: host, opts: opts, logger: logger}
}

// OutputDir returns the directory the exporter writes into for board.
func (e *Exporter) OutputDir(board Board) string {
	return filepath.Join(filepath.Dir(board.FileName()), e.opts.OutputDir)
}

// Run exports Gerbers and drill files, then the BOM, then the placement
// table. The first error stops the run; files already written stay on disk.
func (e *Exporter) Run(ctx context.Context, board Board) Result {
	log := e.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("board", board.FileName()),
	)

	var res Result
	if board.FileName() == "" {
		return failed(res, StepSetup, errors.New("board has not been saved to a file"))
	}

	res.OutputDir = e.OutputDir(board)
	if err := os.MkdirAll(res.OutputDir, 0o755); err != nil {
		return failed(res, StepSetup, fmt.Errorf("create output directory: %w", err))
	}
	log.Info("Export started", zap.String("output_dir", res.OutputDir))

	layers, err := e.exportGerbers(ctx, board, res.OutputDir, log)
	res.Layers = layers
	if err != nil {
		log.Error("Gerber export failed", zap.Error(err))
		return failed(res, StepGerber, err)
	}

	components := board.Components()

	res.BOMFile = filepath.Join(res.OutputDir, e.opts.BOMFile)
	lines := GroupBOM(components, e.opts.BOM)
	if err := writeFile(res.BOMFile, func(w io.Writer) error { return WriteBOM(w, lines) }); err != nil {
		log.Error("BOM export failed", zap.Error(err))
		return failed(res, StepBOM, err)
	}
	res.BOMRows = len(lines)
	log.Info("BOM written", zap.String("file", res.BOMFile), zap.Int("rows", res.BOMRows))

	res.PlacementFile = filepath.Join(res.OutputDir, e.opts.PlacementFile)
	rows := Placements(components, e.opts.Placement)
	if err := writeFile(res.PlacementFile, func(w io.Writer) error { return WritePlacements(w, rows) }); err != nil {
		log.Error("Placement export failed", zap.Error(err))
		return failed(res, StepPlacement, err)
	}
	res.PlacementRows = len(rows)
	log.Info("Placement written", zap.String("file", res.PlacementFile), zap.Int("rows", res.PlacementRows))

	log.Info("Export finished", zap.Strings("layers", res.Layers))
	return res
}

// ExportGerbers plots every enabled layer, then writes the drill files.
// It returns the tokens of the layers the host actually plotted.
func (e *Exporter) ExportGerbers(ctx context.Context, board Board, outputDir string) ([]string, error) {
	return e.exportGerbers(ctx, board, outputDir, e.logger)
}

func (e *Exporter) exportGerbers(ctx context.Context, board Board, outputDir string, log *zap.Logger) (exported []string, err error) {
	plotter, err := e.host.OpenPlotter(board, outputDir, e.opts.Plot)
	if err != nil {
		return nil, fmt.Errorf("open plotter: %w", err)
	}
	defer func() {
		if cerr := plotter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close plotter: %w", cerr)
		}
	}()

	for _, layer := range EnabledLayers(board, e.opts.Layers) {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		ok, err := plotter.PlotLayer(ctx, layer)
		if err != nil {
			return exported, fmt.Errorf("plot %s: %w", layer.Name, err)
		}
		if !ok {
			log.Warn("Layer not plotted", zap.String("layer", layer.Name))
			continue
		}
		log.Debug("Layer plotted", zap.String("layer", layer.Name), zap.String("token", layer.Token))
		exported = append(exported, layer.Token)
	}

	drill, err := e.host.NewDrillWriter(board, e.opts.Drill)
	if err != nil {
		return exported, fmt.Errorf("open drill writer: %w", err)
	}
	if err := drill.WriteDrillFiles(ctx, outputDir); err != nil {
		return exported, fmt.Errorf("write drill files: %w", err)
	}

	return exported, nil
}

// WriteBOMFile writes only the bill of materials for board to path.
func (e *Exporter) WriteBOMFile(board Board, path string) (int, error) {
	lines := GroupBOM(board.Components(), e.opts.BOM)
	return len(lines), writeFile(path, func(w io.Writer) error { return WriteBOM(w, lines) })
}

// WritePlacementFile writes only the placement table for board to path.
func (e *Exporter) WritePlacementFile(board Board, path string) (int, error) {
	rows := Placements(board.Components(), e.opts.Placement)
	return len(rows), writeFile(path, func(w io.Writer) error { return WritePlacements(w, rows) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
