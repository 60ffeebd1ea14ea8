package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local problem catalog",
	}
	cmd.AddCommand(newCacheRefreshCommand(rootOpts))
	cmd.AddCommand(newCacheStatusCommand(rootOpts))
	return cmd
}

func newCacheRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "refresh",
		Short:         "Fetch both judges' problem catalogs into the cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			res, err := app.Catalog.RefreshAll(cmd.Context(), app.Clients)
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				refreshed := map[string]bool{}
				for platform, ok := range res.Refreshed {
					refreshed[string(platform)] = ok
				}
				return f.Success(map[string]any{"refreshed": refreshed, "errors": res.Errors})
			}
			var b strings.Builder
			for platform, ok := range res.Refreshed {
				if ok {
					fmt.Fprintf(&b, "%s: refreshed\n", platform)
				}
			}
			for _, e := range res.Errors {
				fmt.Fprintf(&b, "refresh failed: %s\n", e)
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}
	return cmd
}

func newCacheStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show per-platform catalog freshness",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			refreshed, err := app.Catalog.RefreshedAt(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				out := map[string]int64{}
				for platform, at := range refreshed {
					out[string(platform)] = at
				}
				return f.Success(out)
			}
			var b strings.Builder
			for platform, at := range refreshed {
				fmt.Fprintf(&b, "%s: refreshed at %d\n", platform, at)
			}
			if b.Len() == 0 {
				b.WriteString("catalog is empty; run cache refresh")
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}
	return cmd
}
