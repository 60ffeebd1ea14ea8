package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/gauntlet/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(rootOpts))
	return cmd
}

func newConfigValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate [config-file]",
		Short:         "Validate a config file against the schema",
		Long:          "Loads the given config file (or the defaults when omitted), validates it against the embedded schema, and prints the effective configuration.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			path := rootOpts.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.Load(path)
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(cfg)
			}
			return f.Success("config is valid")
		},
	}
	return cmd
}
