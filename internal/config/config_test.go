package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultMatchesExporterDefaults(t *testing.T) {
	if diff := cmp.Diff(fab.DefaultOptions(), Default().ExportOptions()); diff != "" {
		t.Errorf("Default().ExportOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadForBoardWithoutFile(t *testing.T) {
	t.Setenv(EnvKicadCLI, "")
	dir := t.TempDir()
	cfg, err := LoadForBoard(filepath.Join(dir, "board.kicad_pcb"), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(EnvKicadCLI, "")
	dir := t.TempDir()
	writeConfig(t, dir, `
output_dir: gerbers
kicad_cli: /usr/local/bin/kicad-cli
layers:
  - name: F.Cu
  - name: In1.Cu
    description: Inner 1
drill:
  generate_map: true
placement:
  conventional_sides: true
log:
  level: debug
`)

	cfg, err := LoadForBoard(filepath.Join(dir, "board.kicad_pcb"), "")
	require.NoError(t, err)

	assert.Equal(t, "gerbers", cfg.OutputDir)
	assert.Equal(t, "BOM.csv", cfg.BOMFile, "unset keys keep defaults")
	assert.Equal(t, "/usr/local/bin/kicad-cli", cfg.KicadCLI)
	assert.Equal(t, "debug", cfg.Log.Level)

	opts := cfg.ExportOptions()
	assert.Equal(t, []fab.Layer{
		{Token: "F_Cu", Name: "F.Cu"},
		{Token: "In1_Cu", Name: "In1.Cu", Description: "Inner 1"},
	}, opts.Layers)
	assert.True(t, opts.Drill.GenerateMap)
	assert.True(t, opts.Drill.MinimalHeader, "unset nested keys keep defaults")
	assert.True(t, opts.Placement.ConventionalSides)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvKicadCLI, "/snap/bin/kicad-cli")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, "/snap/bin/kicad-cli", cfg.KicadCLI)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := LoadForBoard("board.kicad_pcb", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad yaml", body: "layers: [\n"},
		{name: "absolute output dir", body: "output_dir: /tmp/out\n"},
		{name: "empty layer list", body: "layers: []\n"},
		{name: "duplicate layer", body: "layers:\n  - name: F.Cu\n  - name: F.Cu\n"},
		{name: "nested bom path", body: "bom_file: out/BOM.csv\n"},
		{name: "negative line width", body: "plot:\n  sketch_pad_line_width_mm: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path, false)
			assert.Error(t, err)
		})
	}
}
