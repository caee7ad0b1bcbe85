package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/fabexport/internal/action"
	"github.com/OpenTraceLab/fabexport/internal/notify"
	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newActionCmd exposes a registered action as a subcommand taking a board.
func (c *cli) newActionCmd(act action.Action) *cobra.Command {
	var notifyKind string

	cmd := &cobra.Command{
		Use:   act.Command + " <board_file>",
		Short: act.Description,
		Long: fmt.Sprintf(`%s (%s)

Runs the Gerber, BOM and placement exports in order and reports the
outcome once. Any failure stops the remaining steps; files already
written are kept. Exits with status 1 when the export fails.`, act.Description, act.Name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Resolve the notifier first so a bad --notify value exports nothing.
			n, err := c.deps.Notifiers(notifyKind, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			cfg, logger, err := c.setup(args[0])
			defer logger.Sync() //nolint:errcheck

			var res fab.Result
			if err != nil {
				res = action.SetupFailure(args[0], nil, err)
			} else {
				res = act.Run(cmd.Context(), action.Invocation{
					BoardFile:  args[0],
					ConfigPath: c.configPath,
					Config:     cfg,
					Logger:     logger,
				})
			}

			if !res.OK() {
				logger.Error("Export failed", zap.Error(res.Err))
			}
			if err := n.Notify(notify.Compose(res)); err != nil {
				logger.Warn("Notification failed", zap.Error(err))
			}

			if !res.OK() {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&notifyKind, "notify", "n", "terminal", "how to report the result: gui, terminal or none")
	return cmd
}
