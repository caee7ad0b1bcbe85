package kicadcli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const demoBoard = "../../pkg/kicad/pcb/testdata/demo.kicad_pcb"

// recordingRunner mimics kicad-cli: gerber commands create their --output
// file unless the layer is listed in skip.
type recordingRunner struct {
	calls [][]string
	skip  map[string]bool
	fail  string // subcommand that should fail ("gerber", "drill")
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if len(args) == 1 && args[0] == "version" {
		return []byte("8.0.4\n"), nil
	}
	if len(args) < 3 {
		return nil, errors.New("bad invocation")
	}
	if args[2] == r.fail {
		return nil, errors.New("kicad-cli: exit status 1: Failed to load board")
	}
	if args[2] == "gerber" {
		out, layer := flagValue(args, "--output"), flagValue(args, "--layers")
		if r.skip[layer] {
			return nil, nil
		}
		return nil, os.WriteFile(out, []byte("%FSLAX46Y46*%"), 0o644)
	}
	return nil, nil
}

func flagValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func copyDemoBoard(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(demoBoard)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "demo.kicad_pcb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenBoardComponents(t *testing.T) {
	board, err := OpenBoard(demoBoard)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(board.FileName()))

	comps := board.Components()
	require.Len(t, comps, 3)
	assert.Equal(t, fab.Component{
		Reference: "R1", Value: "10k", Package: "R_0402_1005Metric",
		X: 110.5, Y: 120.25, Rotation: 90,
	}, comps[0])
	assert.True(t, comps[2].Flipped)
	assert.True(t, comps[2].ExcludeFromPosFiles)

	assert.True(t, board.IsLayerEnabled("Edge.Cuts"))
	assert.False(t, board.IsLayerEnabled("In1.Cu"))
}

func TestOpenBoardMissingFile(t *testing.T) {
	_, err := OpenBoard(filepath.Join(t.TempDir(), "nope.kicad_pcb"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.kicad_pcb")
}

func TestGerberArgs(t *testing.T) {
	layer := fab.Layer{Token: "F_Cu", Name: "F.Cu", Description: "Top Copper"}

	args := GerberArgs("/p/demo.kicad_pcb", "/p/out/demo-F_Cu.gbr", layer, fab.DefaultPlotOptions())
	assert.Equal(t, []string{
		"pcb", "export", "gerber",
		"--output", "/p/out/demo-F_Cu.gbr",
		"--layers", "F.Cu",
		"--use-drill-file-origin",
		"/p/demo.kicad_pcb",
	}, args)

	args = GerberArgs("/p/demo.kicad_pcb", "/p/out/x.gbr", layer, fab.PlotOptions{})
	assert.Contains(t, args, "--no-x2")
	assert.NotContains(t, args, "--use-drill-file-origin")

	assert.Equal(t, "demo-Edge_Cuts.gbr", GerberFileName("/p/demo.kicad_pcb", fab.Layer{Token: "Edge_Cuts"}))
}

func TestDrillArgs(t *testing.T) {
	dir := filepath.Join("p", "out")
	args := DrillArgs("demo.kicad_pcb", dir, fab.DefaultDrillOptions())
	assert.Equal(t, []string{
		"pcb", "export", "drill",
		"--output", dir + string(filepath.Separator),
		"--format", "excellon",
		"--drill-origin", "plot",
		"--excellon-units", "mm",
		"--excellon-min-header",
		"--excellon-separate-th",
		"demo.kicad_pcb",
	}, args)

	args = DrillArgs("demo.kicad_pcb", dir, fab.DrillOptions{MirrorY: true, MergePTHNPTH: true, GenerateMap: true})
	assert.Contains(t, args, "absolute")
	assert.Contains(t, args, "--excellon-mirror-y")
	assert.Contains(t, args, "--generate-map")
	assert.NotContains(t, args, "--excellon-separate-th")
}

func TestHostVersion(t *testing.T) {
	runner := &recordingRunner{}
	v, err := NewHost("", WithRunner(runner)).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.0.4", v)
	assert.Equal(t, DefaultExecutable, runner.calls[0][0])
}

func TestExportThroughKicadCLI(t *testing.T) {
	boardFile := copyDemoBoard(t)
	board, err := OpenBoard(boardFile)
	require.NoError(t, err)

	runner := &recordingRunner{skip: map[string]bool{"B.Mask": true}}
	host := NewHost("/opt/kicad/bin/kicad-cli", WithRunner(runner), WithLogger(zaptest.NewLogger(t)))
	res := fab.NewExporter(host, fab.DefaultOptions(), zaptest.NewLogger(t)).Run(context.Background(), board)

	require.True(t, res.OK(), res.Message())
	// B.Mask was declined by the host; the other six layers are enabled.
	assert.Equal(t, []string{"F_Cu", "B_Cu", "F_Mask", "F_SilkS", "B_SilkS", "Edge_Cuts"}, res.Layers)

	last := runner.calls[len(runner.calls)-1]
	assert.Equal(t, "/opt/kicad/bin/kicad-cli", last[0])
	assert.Equal(t, "drill", last[3])

	bom, err := os.ReadFile(res.BOMFile)
	require.NoError(t, err)
	assert.Equal(t,
		"Designator,Value,Package,Quantity\r\n"+
			"\"R1, R2\",10k,R_0402_1005Metric,2\r\n"+
			"C1,100nF,C_0603_1608Metric,1\r\n",
		string(bom))

	xy, err := os.ReadFile(res.PlacementFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(xy), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "C1,100nF,C_0603_1608Metric,105.12,118.5,180.0,Top", lines[3])
}

func TestExportFailsWhenKicadCLIFails(t *testing.T) {
	boardFile := copyDemoBoard(t)
	board, err := OpenBoard(boardFile)
	require.NoError(t, err)

	runner := &recordingRunner{fail: "gerber"}
	res := fab.NewExporter(NewHost("", WithRunner(runner)), fab.DefaultOptions(), nil).Run(context.Background(), board)

	require.False(t, res.OK())
	assert.Contains(t, res.Message(), "Failed to load board")
	assert.NoFileExists(t, filepath.Join(res.OutputDir, fab.DefaultBOMFile))
	assert.Len(t, runner.calls, 1)
}
