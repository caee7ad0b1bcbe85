package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/fabexport/internal/action"
	"github.com/OpenTraceLab/fabexport/internal/config"
	"github.com/OpenTraceLab/fabexport/internal/kicadcli"
	"github.com/OpenTraceLab/fabexport/internal/logging"
	"github.com/OpenTraceLab/fabexport/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errReported marks failures the user has already been told about.
var errReported = errors.New("failure already reported")

// NotifierFactory picks the notifier for a --notify value.
type NotifierFactory func(kind string, out io.Writer) (notify.Notifier, error)

// Deps are the replaceable collaborators of the command tree.
type Deps struct {
	Runner    kicadcli.Runner // nil runs kicad-cli
	Notifiers NotifierFactory // nil uses DefaultNotifiers
}

type cli struct {
	verbose    bool
	configPath string

	deps     Deps
	registry *action.List
}

// NewRootCmd builds the command tree and registers the export actions.
func NewRootCmd(deps Deps) (*cobra.Command, error) {
	if deps.Notifiers == nil {
		deps.Notifiers = DefaultNotifiers
	}
	c := &cli{deps: deps, registry: &action.List{}}

	if err := action.Register(c.registry, deps.Runner); err != nil {
		return nil, fmt.Errorf("register actions: %w", err)
	}

	rootCmd := &cobra.Command{
		Use:   "fabexport",
		Short: "fabexport - KiCad fabrication output exporter",
		Long: `fabexport writes the files a board house needs from a KiCad PCB:
  - Gerber files for the fabrication layers plus Excellon drill files
  - a grouped bill of materials (BOM.csv)
  - a pick-and-place table (Posiciones_XY.csv)

Plotting is delegated to kicad-cli. Outputs go to Fabricacion_PCB/ next to
the board unless fabexport.yaml says otherwise.

Examples:
  fabexport export board.kicad_pcb              # Full export, result in the terminal
  fabexport export --notify gui board.kicad_pcb # Full export, result in a dialog
  fabexport bom --output - board.kicad_pcb      # BOM to stdout
  fabexport layers board.kicad_pcb              # Which fabrication layers are enabled`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: fabexport.yaml next to the board)")

	for _, act := range c.registry.All() {
		rootCmd.AddCommand(c.newActionCmd(act))
	}
	rootCmd.AddCommand(
		c.newBOMCmd(),
		c.newXYCmd(),
		c.newLayersCmd(),
		c.newActionsCmd(),
	)
	return rootCmd, nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd, err := NewRootCmd(Deps{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// DefaultNotifiers maps gui, terminal and none to their notifiers.
func DefaultNotifiers(kind string, out io.Writer) (notify.Notifier, error) {
	switch kind {
	case "gui":
		return &notify.Dialog{}, nil
	case "terminal", "":
		return notify.NewTerminal(out), nil
	case "none":
		return notify.Discard, nil
	default:
		return nil, fmt.Errorf("unknown notifier %q (want gui, terminal or none)", kind)
	}
}

// setup loads the configuration for boardFile and builds a logger from it.
// A config error still yields a usable logger so it can be reported.
func (c *cli) setup(boardFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadForBoard(boardFile, c.configPath)
	logCfg := logging.Config{Level: "info", Verbose: c.verbose}
	if err == nil {
		logCfg.Level = cfg.Log.Level
		logCfg.Format = cfg.Log.Format
	}
	return cfg, logging.Must(logCfg), err
}
