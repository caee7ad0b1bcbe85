package kicadcli

import (
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
)

// GerberFileName returns the file KiCad uses for a single plotted layer:
// <board>-<token>.gbr.
func GerberFileName(boardFile string, layer fab.Layer) string {
	base := strings.TrimSuffix(filepath.Base(boardFile), filepath.Ext(boardFile))
	return base + "-" + layer.Token + ".gbr"
}

// GerberArgs builds the kicad-cli arguments that plot one layer to outFile.
func GerberArgs(boardFile, outFile string, layer fab.Layer, opts fab.PlotOptions) []string {
	args := []string{"pcb", "export", "gerber",
		"--output", outFile,
		"--layers", layer.Name,
	}
	if opts.UseAuxOrigin {
		args = append(args, "--use-drill-file-origin")
	}
	if !opts.GerberAttributes {
		args = append(args, "--no-x2")
	}
	return append(args, boardFile)
}

// DrillArgs builds the kicad-cli arguments that write Excellon drill files
// into outputDir.
func DrillArgs(boardFile, outputDir string, opts fab.DrillOptions) []string {
	origin := "absolute"
	if opts.UseAuxOrigin {
		origin = "plot"
	}
	dir := outputDir
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}

	args := []string{"pcb", "export", "drill",
		"--output", dir,
		"--format", "excellon",
		"--drill-origin", origin,
		"--excellon-units", "mm",
	}
	if opts.MirrorY {
		args = append(args, "--excellon-mirror-y")
	}
	if opts.MinimalHeader {
		args = append(args, "--excellon-min-header")
	}
	if !opts.MergePTHNPTH {
		args = append(args, "--excellon-separate-th")
	}
	if opts.GenerateMap {
		args = append(args, "--generate-map", "--map-format", "gerberx2")
	}
	return append(args, boardFile)
}
