package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gauntlet/internal/stats"
)

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:           "leaderboard",
		Short:         "Show the XP leaderboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			doc, err := app.Store.Snapshot(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			entries := stats.Leaderboard(doc, limit)
			if rootOpts.Format == "json" {
				return f.Success(entries)
			}
			var b strings.Builder
			for i, e := range entries {
				fmt.Fprintf(&b, "%2d. %-16s level=%d xp=%d solved=%d\n",
					i+1, e.Username, e.Level, e.XP, e.TotalSolved)
			}
			if b.Len() == 0 {
				b.WriteString("no users yet")
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum entries to show")
	return cmd
}
