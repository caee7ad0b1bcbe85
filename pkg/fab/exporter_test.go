package fab

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBoard struct {
	file       string
	components []Component
	layers     map[string]bool
}

func (b *fakeBoard) FileName() string             { return b.file }
func (b *fakeBoard) Components() []Component      { return b.components }
func (b *fakeBoard) IsLayerEnabled(l string) bool { return b.layers[l] }

type fakeHost struct {
	plotErr     error
	drillErr    error
	declined    map[string]bool
	plotted     []string
	drillDirs   []string
	closed      int
	plotOptions PlotOptions
}

type fakePlotter struct {
	host *fakeHost
	dir  string
}

func (p *fakePlotter) PlotLayer(_ context.Context, layer Layer) (bool, error) {
	if p.host.plotErr != nil {
		return false, p.host.plotErr
	}
	if p.host.declined[layer.Name] {
		return false, nil
	}
	p.host.plotted = append(p.host.plotted, layer.Name)
	return true, os.WriteFile(filepath.Join(p.dir, "board-"+layer.Token+".gbr"), []byte("G04*"), 0o644)
}

func (p *fakePlotter) Close() error {
	p.host.closed++
	return nil
}

type fakeDrill struct{ host *fakeHost }

func (d fakeDrill) WriteDrillFiles(_ context.Context, dir string) error {
	if d.host.drillErr != nil {
		return d.host.drillErr
	}
	d.host.drillDirs = append(d.host.drillDirs, dir)
	return nil
}

func (h *fakeHost) OpenPlotter(_ Board, dir string, opts PlotOptions) (Plotter, error) {
	h.plotOptions = opts
	return &fakePlotter{host: h, dir: dir}, nil
}

func (h *fakeHost) NewDrillWriter(Board, DrillOptions) (DrillWriter, error) {
	return fakeDrill{host: h}, nil
}

func newFakeBoard(t *testing.T, components []Component) *fakeBoard {
	t.Helper()
	dir := t.TempDir()
	return &fakeBoard{
		file:       filepath.Join(dir, "board.kicad_pcb"),
		components: components,
		layers: map[string]bool{
			"F.Cu": true, "B.Cu": true, "F.Mask": true, "B.Mask": true,
			"F.SilkS": true, "Edge.Cuts": true,
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExporterRun(t *testing.T) {
	board := newFakeBoard(t, []Component{
		{Reference: "R1", Value: "10k", Package: "0402", X: 1.23456, Y: 4.5, Rotation: 90.05},
		{Reference: "R2", Value: "10k", Package: "0402"},
		{Reference: "C1", Value: "100nF", Package: "0603", Flipped: true},
	})
	host := &fakeHost{}
	exp := NewExporter(host, DefaultOptions(), zaptest.NewLogger(t))

	res := exp.Run(context.Background(), board)

	require.True(t, res.OK(), res.Message())
	wantDir := filepath.Join(filepath.Dir(board.file), DefaultOutputDir)
	assert.Equal(t, wantDir, res.OutputDir)
	// B.SilkS is not enabled on the board.
	assert.Equal(t, []string{"F_Cu", "B_Cu", "F_Mask", "B_Mask", "F_SilkS", "Edge_Cuts"}, res.Layers)
	assert.Equal(t, []string{wantDir}, host.drillDirs)
	assert.Equal(t, 1, host.closed)
	assert.Equal(t, DefaultPlotOptions(), host.plotOptions)
	assert.Equal(t, 2, res.BOMRows)
	assert.Equal(t, 3, res.PlacementRows)

	assert.Equal(t,
		"Designator,Value,Package,Quantity\r\n\"R1, R2\",10k,0402,2\r\nC1,100nF,0603,1\r\n",
		readFile(t, filepath.Join(wantDir, "BOM.csv")))
	assert.Equal(t,
		"Designator,Valor,Paquete,PosX(mm),PosY(mm),Rotación,Capa\r\n"+
			"R1,10k,0402,1.23,4.5,90.1,Bottom\r\n"+
			"R2,10k,0402,0.0,0.0,0.0,Bottom\r\n"+
			"C1,100nF,0603,0.0,0.0,0.0,Top\r\n",
		readFile(t, filepath.Join(wantDir, "Posiciones_XY.csv")))
	assert.FileExists(t, filepath.Join(wantDir, "board-F_Cu.gbr"))
}

func TestExporterRunTwice(t *testing.T) {
	board := newFakeBoard(t, []Component{{Reference: "R1", Value: "1k", Package: "0402"}})
	exp := NewExporter(&fakeHost{}, DefaultOptions(), nil)

	first := exp.Run(context.Background(), board)
	require.True(t, first.OK(), first.Message())

	second := exp.Run(context.Background(), board)
	require.True(t, second.OK(), second.Message())
	assert.Equal(t, first.OutputDir, second.OutputDir)
}

func TestExporterGerberFailureStopsRun(t *testing.T) {
	board := newFakeBoard(t, []Component{{Reference: "R1", Value: "1k", Package: "0402"}})
	plotErr := errors.New("plot controller unavailable")
	host := &fakeHost{plotErr: plotErr}
	exp := NewExporter(host, DefaultOptions(), zaptest.NewLogger(t))

	res := exp.Run(context.Background(), board)

	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, plotErr)
	step, ok := res.FailedStep()
	require.True(t, ok)
	assert.Equal(t, StepGerber, step)
	assert.Contains(t, res.Message(), "plot controller unavailable")
	assert.Equal(t, 1, host.closed)

	assert.DirExists(t, res.OutputDir)
	assert.NoFileExists(t, filepath.Join(res.OutputDir, "BOM.csv"))
	assert.NoFileExists(t, filepath.Join(res.OutputDir, "Posiciones_XY.csv"))
}

func TestExporterDrillFailure(t *testing.T) {
	board := newFakeBoard(t, nil)
	host := &fakeHost{drillErr: errors.New("no holes")}
	res := NewExporter(host, DefaultOptions(), nil).Run(context.Background(), board)

	require.False(t, res.OK())
	var failure *ExportFailure
	require.ErrorAs(t, res.Err, &failure)
	assert.Equal(t, StepGerber, failure.Step)
	// Layers plotted before the drill step are still reported.
	assert.Len(t, res.Layers, 6)
	assert.NoFileExists(t, filepath.Join(res.OutputDir, "BOM.csv"))
}

func TestExporterDeclinedLayer(t *testing.T) {
	board := newFakeBoard(t, nil)
	host := &fakeHost{declined: map[string]bool{"F.Mask": true}}
	core, logs := observer.New(zap.DebugLevel)
	res := NewExporter(host, DefaultOptions(), zap.New(core)).Run(context.Background(), board)

	require.True(t, res.OK(), res.Message())
	assert.NotContains(t, res.Layers, "F_Mask")
	assert.Len(t, res.Layers, 5)

	// Per-layer lines carry the run's correlation fields.
	warnings := logs.FilterMessage("Layer not plotted").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "F.Mask", fields["layer"])
	assert.Equal(t, board.FileName(), fields["board"])
	assert.NotEmpty(t, fields["run_id"])

	plotted := logs.FilterMessage("Layer plotted").All()
	require.Len(t, plotted, 5)
	assert.Equal(t, fields["run_id"], plotted[0].ContextMap()["run_id"])
}

func TestExporterEmptyBoard(t *testing.T) {
	board := newFakeBoard(t, nil)
	res := NewExporter(&fakeHost{}, DefaultOptions(), nil).Run(context.Background(), board)

	require.True(t, res.OK(), res.Message())
	assert.Zero(t, res.BOMRows)
	assert.Zero(t, res.PlacementRows)
	assert.Equal(t, "Designator,Value,Package,Quantity\r\n", readFile(t, res.BOMFile))
	assert.Equal(t, "Designator,Valor,Paquete,PosX(mm),PosY(mm),Rotación,Capa\r\n", readFile(t, res.PlacementFile))
}

func TestExporterUnsavedBoard(t *testing.T) {
	board := &fakeBoard{}
	res := NewExporter(&fakeHost{}, DefaultOptions(), nil).Run(context.Background(), board)

	require.False(t, res.OK())
	step, _ := res.FailedStep()
	assert.Equal(t, StepSetup, step)
}

func TestExporterOutputDirBlocked(t *testing.T) {
	board := newFakeBoard(t, nil)
	// A regular file where the directory should go.
	blocker := filepath.Join(filepath.Dir(board.file), DefaultOutputDir)
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	res := NewExporter(&fakeHost{}, DefaultOptions(), nil).Run(context.Background(), board)

	require.False(t, res.OK())
	step, _ := res.FailedStep()
	assert.Equal(t, StepSetup, step)
}

func TestExporterCancelled(t *testing.T) {
	board := newFakeBoard(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewExporter(&fakeHost{}, DefaultOptions(), nil).Run(ctx, board)

	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestEnabledLayers(t *testing.T) {
	board := &fakeBoard{layers: map[string]bool{"B.Cu": true, "Edge.Cuts": true}}
	got := EnabledLayers(board, DefaultLayers())
	require.Len(t, got, 2)
	assert.Equal(t, "B_Cu", got[0].Token)
	assert.Equal(t, "Edge_Cuts", got[1].Token)
	assert.Equal(t, "In1_Cu", LayerToken("In1.Cu"))
}
