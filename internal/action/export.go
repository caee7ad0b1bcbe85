package action

import (
	"context"
	"path/filepath"

	"github.com/OpenTraceLab/fabexport/internal/config"
	"github.com/OpenTraceLab/fabexport/internal/kicadcli"
	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"go.uber.org/zap"
)

// ExportDescriptor describes the fabrication export action.
func ExportDescriptor() Descriptor {
	return Descriptor{
		Name:              "Plugin Kicad Demo",
		Category:          "Fabricación",
		Description:       "Exporta archivos para fabricación (Gerber, BOM, XY)",
		Command:           "export",
		ShowToolbarButton: true,
		IconFile:          "icon.png",
		DarkIconFile:      "icon.png",
	}
}

// Register adds the fabrication export action to reg. runner may be nil to
// execute kicad-cli directly.
func Register(reg Registry, runner kicadcli.Runner) error {
	return reg.Register(Action{
		Descriptor: ExportDescriptor(),
		Run: func(ctx context.Context, inv Invocation) fab.Result {
			return RunExport(ctx, inv, runner)
		},
	})
}

// RunExport loads the board, and the configuration unless inv.Config is
// set, then runs a full export. Setup problems are reported as a failed
// Result like any other error.
func RunExport(ctx context.Context, inv Invocation, runner kicadcli.Runner) fab.Result {
	logger := inv.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := inv.Config
	if cfg == nil {
		var err error
		if cfg, err = config.LoadForBoard(inv.BoardFile, inv.ConfigPath); err != nil {
			return SetupFailure(inv.BoardFile, nil, err)
		}
	}

	board, err := kicadcli.OpenBoard(inv.BoardFile)
	if err != nil {
		return SetupFailure(inv.BoardFile, cfg, err)
	}
	logger.Debug("Board loaded",
		zap.String("file", board.FileName()),
		zap.Int("version", board.PCB().Version),
		zap.Int("footprints", len(board.PCB().Footprints)),
		zap.Int("layers", len(board.PCB().Layers)))

	hostOpts := []kicadcli.Option{kicadcli.WithLogger(logger)}
	if runner != nil {
		hostOpts = append(hostOpts, kicadcli.WithRunner(runner))
	}
	host := kicadcli.NewHost(cfg.KicadCLI, hostOpts...)

	return fab.NewExporter(host, cfg.ExportOptions(), logger).Run(ctx, board)
}

// SetupFailure is the result of a run that failed before exporting. The
// output directory is only known once the configuration has loaded.
func SetupFailure(boardFile string, cfg *config.Config, err error) fab.Result {
	res := fab.Result{Err: &fab.ExportFailure{Step: fab.StepSetup, Err: err}}
	if cfg != nil {
		res.OutputDir = filepath.Join(filepath.Dir(boardFile), cfg.OutputDir)
	}
	return res
}
