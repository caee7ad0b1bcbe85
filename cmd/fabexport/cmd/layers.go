package cmd

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/fabexport/internal/action"
	"github.com/OpenTraceLab/fabexport/internal/kicadcli"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func (c *cli) newLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers <board_file>",
		Short: "List the fabrication layers and whether the board enables them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(args[0])
			defer logger.Sync() //nolint:errcheck
			if err != nil {
				return err
			}
			board, err := kicadcli.OpenBoard(args[0])
			if err != nil {
				return err
			}

			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			header := r.NewStyle().Bold(true)
			on := r.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
			off := r.NewStyle().Faint(true)

			rows := [][]string{{"Token", "Layer", "Description", "Enabled"}}
			for _, l := range cfg.ExportOptions().Layers {
				state := "no"
				if board.IsLayerEnabled(l.Name) {
					state = "yes"
				}
				rows = append(rows, []string{l.Token, l.Name, l.Description, state})
			}

			widths := columnWidths(rows)
			for i, row := range rows {
				line := padRow(row, widths)
				switch {
				case i == 0:
					line = header.Render(line)
				case row[3] == "yes":
					line = on.Render(line)
				default:
					line = off.Render(line)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func (c *cli) newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List registered export actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			name := r.NewStyle().Bold(true)
			meta := r.NewStyle().Faint(true)

			for _, act := range c.registry.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n  %s\n",
					name.Render(act.Name),
					meta.Render(actionMeta(act)),
					act.Description)
			}
			return nil
		},
	}
}

func actionMeta(act action.Action) string {
	parts := []string{"command: " + act.Command, "category: " + act.Category}
	if act.ShowToolbarButton {
		parts = append(parts, "toolbar")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func padRow(row []string, widths []int) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}
