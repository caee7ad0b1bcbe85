// Package config loads fabexport settings.
//
// Settings come from built-in defaults, then an optional fabexport.yaml
// (next to the board, or given explicitly), then the FABEXPORT_KICAD_CLI
// environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"gopkg.in/yaml.v3"
)

// FileName is the per-project config file looked up next to the board.
const FileName = "fabexport.yaml"

// EnvKicadCLI overrides the kicad-cli executable path.
const EnvKicadCLI = "FABEXPORT_KICAD_CLI"

// Config is the complete fabexport configuration.
type Config struct {
	OutputDir     string          `yaml:"output_dir"`
	BOMFile       string          `yaml:"bom_file"`
	PlacementFile string          `yaml:"placement_file"`
	KicadCLI      string          `yaml:"kicad_cli"`
	Layers        []LayerConfig   `yaml:"layers"`
	Plot          PlotConfig      `yaml:"plot"`
	Drill         DrillConfig     `yaml:"drill"`
	BOM           BOMConfig       `yaml:"bom"`
	Placement     PlacementConfig `yaml:"placement"`
	Log           LogConfig       `yaml:"log"`
}

// LayerConfig selects one layer for Gerber output.
type LayerConfig struct {
	Name        string `yaml:"name"`  // KiCad layer name, e.g. "F.Cu"
	Token       string `yaml:"token"` // defaults to Name with dots replaced
	Description string `yaml:"description"`
}

type PlotConfig struct {
	SketchPadLineWidth float64 `yaml:"sketch_pad_line_width_mm"`
	GerberAttributes   bool    `yaml:"gerber_attributes"`
	UseAuxOrigin       bool    `yaml:"use_aux_origin"`
}

type DrillConfig struct {
	MirrorY       bool `yaml:"mirror_y"`
	MinimalHeader bool `yaml:"minimal_header"`
	UseAuxOrigin  bool `yaml:"use_aux_origin"`
	MergePTHNPTH  bool `yaml:"merge_pth_npth"`
	GenerateMap   bool `yaml:"generate_map"`
}

type BOMConfig struct {
	SkipExcluded bool `yaml:"skip_excluded"`
	SkipDNP      bool `yaml:"skip_dnp"`
}

// PlacementConfig controls the XY table. ConventionalSides switches the
// side column to KiCad's convention (flipped footprints are "Bottom").
type PlacementConfig struct {
	ConventionalSides bool `yaml:"conventional_sides"`
	SkipExcluded      bool `yaml:"skip_excluded"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := fab.DefaultOptions()
	layers := make([]LayerConfig, 0, len(opts.Layers))
	for _, l := range opts.Layers {
		layers = append(layers, LayerConfig{Name: l.Name, Token: l.Token, Description: l.Description})
	}
	return &Config{
		OutputDir:     opts.OutputDir,
		BOMFile:       opts.BOMFile,
		PlacementFile: opts.PlacementFile,
		KicadCLI:      "kicad-cli",
		Layers:        layers,
		Plot: PlotConfig{
			SketchPadLineWidth: opts.Plot.SketchPadLineWidth,
			GerberAttributes:   opts.Plot.GerberAttributes,
			UseAuxOrigin:       opts.Plot.UseAuxOrigin,
		},
		Drill: DrillConfig{
			MirrorY:       opts.Drill.MirrorY,
			MinimalHeader: opts.Drill.MinimalHeader,
			UseAuxOrigin:  opts.Drill.UseAuxOrigin,
			MergePTHNPTH:  opts.Drill.MergePTHNPTH,
			GenerateMap:   opts.Drill.GenerateMap,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// when optional is true.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadForBoard loads explicit when set, otherwise the optional
// fabexport.yaml in the board's directory.
func LoadForBoard(boardFile, explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit, false)
	}
	return Load(filepath.Join(filepath.Dir(boardFile), FileName), true)
}

func (c *Config) applyEnv() {
	if exe := strings.TrimSpace(os.Getenv(EnvKicadCLI)); exe != "" {
		c.KicadCLI = exe
	}
}

// Validate checks values that would otherwise fail late in an export.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output_dir must not be empty")
	}
	if filepath.IsAbs(c.OutputDir) {
		return fmt.Errorf("output_dir %q must be relative to the board directory", c.OutputDir)
	}
	for _, name := range []string{c.BOMFile, c.PlacementFile} {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("invalid output file name %q", name)
		}
	}
	if len(c.Layers) == 0 {
		return errors.New("at least one layer is required")
	}
	seen := make(map[string]bool)
	for _, l := range c.Layers {
		if l.Name == "" {
			return errors.New("layer entry without name")
		}
		if seen[l.Name] {
			return fmt.Errorf("layer %q listed twice", l.Name)
		}
		seen[l.Name] = true
	}
	if c.Plot.SketchPadLineWidth < 0 {
		return errors.New("plot.sketch_pad_line_width_mm must not be negative")
	}
	return nil
}

// ExportOptions converts the configuration into exporter options.
func (c *Config) ExportOptions() fab.Options {
	layers := make([]fab.Layer, 0, len(c.Layers))
	for _, l := range c.Layers {
		token := l.Token
		if token == "" {
			token = fab.LayerToken(l.Name)
		}
		layers = append(layers, fab.Layer{Token: token, Name: l.Name, Description: l.Description})
	}

	return fab.Options{
		OutputDir:     c.OutputDir,
		BOMFile:       c.BOMFile,
		PlacementFile: c.PlacementFile,
		Layers:        layers,
		Plot: fab.PlotOptions{
			SketchPadLineWidth: c.Plot.SketchPadLineWidth,
			GerberAttributes:   c.Plot.GerberAttributes,
			UseAuxOrigin:       c.Plot.UseAuxOrigin,
		},
		Drill: fab.DrillOptions{
			MirrorY:       c.Drill.MirrorY,
			MinimalHeader: c.Drill.MinimalHeader,
			UseAuxOrigin:  c.Drill.UseAuxOrigin,
			MergePTHNPTH:  c.Drill.MergePTHNPTH,
			GenerateMap:   c.Drill.GenerateMap,
		},
		BOM: fab.BOMOptions{
			SkipExcluded: c.BOM.SkipExcluded,
			SkipDNP:      c.BOM.SkipDNP,
		},
		Placement: fab.PlacementOptions{
			ConventionalSides: c.Placement.ConventionalSides,
			SkipExcluded:      c.Placement.SkipExcluded,
		},
	}
}
