package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/session"
)

// NewRoomCommand creates the room command group.
func NewRoomCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Create and run multi-user rooms",
	}
	cmd.AddCommand(newRoomCreateCommand(rootOpts))
	cmd.AddCommand(newRoomJoinCommand(rootOpts))
	cmd.AddCommand(newRoomLifecycleCommand(rootOpts, "start", "Start a lobby room (host only)"))
	cmd.AddCommand(newRoomLifecycleCommand(rootOpts, "finish", "Finish a running room (host only)"))
	cmd.AddCommand(newRoomLeaveCommand(rootOpts))
	cmd.AddCommand(newRoomDeleteCommand(rootOpts))
	cmd.AddCommand(newRoomRefreshCommand(rootOpts))
	cmd.AddCommand(newRoomScoreboardCommand(rootOpts))
	return cmd
}

func newRoomLeaveCommand(rootOpts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:           "leave <room-id>",
		Short:         "Leave a lobby room",
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

			if err := app.Session.LeaveRoom(cmd.Context(), user, args[0]); err != nil {
				return f.Fail(err)
			}
			return f.Success(fmt.Sprintf("left room %s", args[0]))
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "leaving user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRoomDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:           "delete <room-id>",
		Short:         "Delete a finished or unstarted room (host only)",
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

			if err := app.Session.DeleteRoom(cmd.Context(), user, args[0]); err != nil {
				return f.Fail(err)
			}
			return f.Success(fmt.Sprintf("deleted room %s", args[0]))
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "acting user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRoomCreateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &createFlags{}
	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a room and print its invite code",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			in, err := flags.input(cmd)
			if err != nil {
				return f.Fail(err)
			}
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			room, err := app.Session.CreateRoom(cmd.Context(), in)
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(room)
			}
			return f.Success(fmt.Sprintf("room %s (%s)\n  invite code: %s\n  %d problems",
				room.ID, room.Name, room.InviteCode, len(room.Problems)))
		},
	}
	flags.register(cmd)
	return cmd
}

func newRoomJoinCommand(rootOpts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:           "join <invite-code>",
		Short:         "Join a lobby room by invite code",
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

			room, err := app.Session.JoinRoom(cmd.Context(), user, args[0])
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(room)
			}
			return f.Success(fmt.Sprintf("joined room %s (%d members)", room.ID, len(room.Members)))
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "joining user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRoomLifecycleCommand(rootOpts *RootOptions, verb, short string) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:           verb + " <room-id>",
		Short:         short,
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

			var room *domain.Room
			switch verb {
			case "start":
				room, err = app.Session.StartRoom(cmd.Context(), user, args[0])
			case "finish":
				room, err = app.Session.FinishRoom(cmd.Context(), user, args[0])
			}
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(room)
			}
			return f.Success(fmt.Sprintf("room %s is now %s", room.ID, room.Status))
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "acting user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRoomRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "refresh <room-id>",
		Short:         "Poll the judges once for every room member",
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

			room, flags, err := app.Poll.RefreshRoom(cmd.Context(), args[0])
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(map[string]any{"room": room, "polled": flags})
			}
			return f.Success(fmt.Sprintf("%s\n  polled codeforces=%v atcoder=%v",
				formatScoreboard(room), flags.Codeforces, flags.AtCoder))
		},
	}
	return cmd
}

func newRoomScoreboardCommand(rootOpts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:           "scoreboard <room-id>",
		Short:         "Show the room standings",
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

			room, err := app.Session.GetRoom(cmd.Context(), user, args[0])
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(session.Scoreboard(room))
			}
			return f.Success(formatScoreboard(room))
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "requesting user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func formatScoreboard(room *domain.Room) string {
	var b strings.Builder
	fmt.Fprintf(&b, "room %s (%s, %s)", room.ID, room.Name, room.Status)
	for i, row := range session.Scoreboard(room) {
		fmt.Fprintf(&b, "\n  %d. %-16s solved=%d penalty=%ds", i+1, row.Username, row.Solved, row.PenaltySeconds)
	}
	return b.String()
}
