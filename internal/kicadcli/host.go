package kicadcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"go.uber.org/zap"
)

// DefaultExecutable is looked up on PATH when no explicit path is configured.
const DefaultExecutable = "kicad-cli"

// Host drives kicad-cli on behalf of the exporter.
type Host struct {
	exe    string
	runner Runner
	logger *zap.Logger
}

// Option customises a Host.
type Option func(*Host)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(h *Host) { h.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// NewHost creates a host that runs the kicad-cli executable at exe.
func NewHost(exe string, opts ...Option) *Host {
	if exe == "" {
		exe = DefaultExecutable
	}
	h := &Host{exe: exe, runner: ExecRunner{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Version returns the kicad-cli version string.
func (h *Host) Version(ctx context.Context) (string, error) {
	out, err := h.runner.Run(ctx, h.exe, "version")
	if err != nil {
		return "", fmt.Errorf("kicad-cli not usable: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (h *Host) OpenPlotter(board fab.Board, outputDir string, opts fab.PlotOptions) (fab.Plotter, error) {
	if board.FileName() == "" {
		return nil, errors.New("board has no file name")
	}
	if opts.SketchPadLineWidth > 0 {
		h.logger.Debug("kicad-cli uses the board's own sketch pad line width",
			zap.Float64("requested_mm", opts.SketchPadLineWidth))
	}
	return &plotter{host: h, board: board.FileName(), dir: outputDir, opts: opts}, nil
}

func (h *Host) NewDrillWriter(board fab.Board, opts fab.DrillOptions) (fab.DrillWriter, error) {
	if board.FileName() == "" {
		return nil, errors.New("board has no file name")
	}
	return &drillWriter{host: h, board: board.FileName(), opts: opts}, nil
}

type plotter struct {
	host  *Host
	board string
	dir   string
	opts  fab.PlotOptions
}

func (p *plotter) PlotLayer(ctx context.Context, layer fab.Layer) (bool, error) {
	out := filepath.Join(p.dir, GerberFileName(p.board, layer))
	args := GerberArgs(p.board, out, layer, p.opts)
	p.host.logger.Debug("Running kicad-cli", zap.Strings("args", args))

	if _, err := p.host.runner.Run(ctx, p.host.exe, args...); err != nil {
		return false, err
	}
	if _, err := os.Stat(out); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close is a no-op: each layer is plotted by its own kicad-cli process.
func (p *plotter) Close() error { return nil }

type drillWriter struct {
	host  *Host
	board string
	opts  fab.DrillOptions
}

func (d *drillWriter) WriteDrillFiles(ctx context.Context, outputDir string) error {
	args := DrillArgs(d.board, outputDir, d.opts)
	d.host.logger.Debug("Running kicad-cli", zap.Strings("args", args))
	_, err := d.host.runner.Run(ctx, d.host.exe, args...)
	return err
}
