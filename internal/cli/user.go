package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts and linked judge handles",
	}
	cmd.AddCommand(newUserCreateCommand(rootOpts))
	cmd.AddCommand(newUserShowCommand(rootOpts))
	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		username string
		cf       string
		atcoder  string
	)
	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create an account",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			user, err := app.Session.RegisterUser(cmd.Context(), username, cf, atcoder)
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(user)
			}
			return f.Success(fmt.Sprintf("created user %s (%s)", user.Username, user.ID))
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name (required)")
	cmd.Flags().StringVar(&cf, "cf", "", "Codeforces handle")
	cmd.Flags().StringVar(&atcoder, "atcoder", "", "AtCoder user id")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "show <user-id>",
		Short:         "Show an account with its stats",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			user, err := app.Session.GetUser(cmd.Context(), args[0])
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(user)
			}
			return f.Success(fmt.Sprintf("%s  xp=%d solved=%d streak=%d",
				user.Username, user.Stats.XP, user.Stats.TotalSolved, user.Stats.StreakDays))
		},
	}
	return cmd
}
