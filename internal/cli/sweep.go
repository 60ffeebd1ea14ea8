package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the sweep command: the background poll loop.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:           "sweep",
		Short:         "Poll all running sessions on an interval",
		Long:          "Polls every running contest and room on the configured interval until interrupted. With --once, runs a single sweep and exits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			if once {
				app.Poll.Sweep(cmd.Context())
				return f.Success("sweep complete")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := app.Poll.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return f.Fail(err)
			}
			return f.Success("sweep loop stopped")
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single sweep and exit")
	return cmd
}
