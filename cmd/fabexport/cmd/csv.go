package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/fabexport/internal/kicadcli"
	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) newBOMCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "bom <board_file>",
		Short: "Write only the bill of materials",
		Long: `Groups components by value and package and writes BOM.csv into the
output directory. Use --output to pick another path, or - for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.writeCSV(cmd, args[0], output, func(cfg fab.Options) string { return cfg.BOMFile },
				func(w io.Writer, board fab.Board, opts fab.Options) (int, error) {
					lines := fab.GroupBOM(board.Components(), opts.BOM)
					return len(lines), fab.WriteBOM(w, lines)
				})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	return cmd
}

func (c *cli) newXYCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "xy <board_file>",
		Short: "Write only the component placement table",
		Long: `Writes one row per component with position, rotation and side to
Posiciones_XY.csv. Use --output to pick another path, or - for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.writeCSV(cmd, args[0], output, func(cfg fab.Options) string { return cfg.PlacementFile },
				func(w io.Writer, board fab.Board, opts fab.Options) (int, error) {
					rows := fab.Placements(board.Components(), opts.Placement)
					return len(rows), fab.WritePlacements(w, rows)
				})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	return cmd
}

type csvWriter func(w io.Writer, board fab.Board, opts fab.Options) (int, error)

func (c *cli) writeCSV(cmd *cobra.Command, boardFile, output string, defaultName func(fab.Options) string, write csvWriter) error {
	cfg, logger, err := c.setup(boardFile)
	defer logger.Sync() //nolint:errcheck
	if err != nil {
		return err
	}

	board, err := kicadcli.OpenBoard(boardFile)
	if err != nil {
		return err
	}
	opts := cfg.ExportOptions()

	if output == "-" {
		_, err := write(cmd.OutOrStdout(), board, opts)
		return err
	}

	if output == "" {
		dir := fab.NewExporter(nil, opts, logger).OutputDir(board)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		output = filepath.Join(dir, defaultName(opts))
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	rows, err := write(f, board, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	logger.Info("CSV written", zap.String("file", output), zap.Int("rows", rows))
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
