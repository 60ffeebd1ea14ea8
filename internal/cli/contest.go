package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/session"
)

// NewContestCommand creates the contest command group.
func NewContestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contest",
		Short: "Create and run single-user virtual contests",
	}
	cmd.AddCommand(newContestCreateCommand(rootOpts))
	cmd.AddCommand(newContestListCommand(rootOpts))
	cmd.AddCommand(newContestLifecycleCommand(rootOpts, "start", "Start a created contest"))
	cmd.AddCommand(newContestLifecycleCommand(rootOpts, "finish", "Finish a running contest"))
	cmd.AddCommand(newContestRefreshCommand(rootOpts))
	cmd.AddCommand(newContestDeleteCommand(rootOpts))
	return cmd
}

// createFlags holds the shared creation flags for contests and rooms.
type createFlags struct {
	owner         string
	name          string
	duration      int
	platforms     []string
	count         int
	specs         []string
	cfMin, cfMax  int
	atMin, atMax  int
	tags          []string
	excludeSolved bool
	seed          string
	start         bool
}

func (c *createFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.owner, "owner", "", "owner user id (required)")
	cmd.Flags().StringVar(&c.name, "name", "", "session name")
	cmd.Flags().IntVar(&c.duration, "duration", 120, "duration in minutes")
	cmd.Flags().StringSliceVar(&c.platforms, "platforms", []string{"codeforces", "atcoder"}, "platforms to draw from")
	cmd.Flags().IntVar(&c.count, "count", 0, "number of problems (legacy mode)")
	cmd.Flags().StringArrayVar(&c.specs, "spec", nil, "per-problem spec platform[:min-max], repeatable")
	cmd.Flags().IntVar(&c.cfMin, "cf-min", 0, "minimum Codeforces rating")
	cmd.Flags().IntVar(&c.cfMax, "cf-max", 0, "maximum Codeforces rating")
	cmd.Flags().IntVar(&c.atMin, "at-min", 0, "minimum AtCoder difficulty")
	cmd.Flags().IntVar(&c.atMax, "at-max", 0, "maximum AtCoder difficulty")
	cmd.Flags().StringSliceVar(&c.tags, "tags", nil, "Codeforces tag filter")
	cmd.Flags().BoolVar(&c.excludeSolved, "exclude-solved", false, "exclude problems the owner already solved")
	cmd.Flags().StringVar(&c.seed, "seed", "", "selection seed (random when empty)")
	cmd.Flags().BoolVar(&c.start, "start", false, "start immediately")
	_ = cmd.MarkFlagRequired("owner")
}

func (c *createFlags) input(cmd *cobra.Command) (session.CreateInput, error) {
	in := session.CreateInput{
		OwnerUserID:          c.owner,
		Name:                 c.name,
		DurationMinutes:      c.duration,
		Count:                c.count,
		CFTags:               c.tags,
		ExcludeAlreadySolved: c.excludeSolved,
		Seed:                 c.seed,
		StartImmediately:     c.start,
	}
	for _, p := range c.platforms {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "codeforces", "cf":
			in.Platforms.Codeforces = true
		case "atcoder", "at":
			in.Platforms.AtCoder = true
		default:
			return in, fmt.Errorf("unknown platform %q", p)
		}
	}
	for _, raw := range c.specs {
		spec, err := parseSpec(raw)
		if err != nil {
			return in, err
		}
		in.ProblemSpecs = append(in.ProblemSpecs, spec)
	}
	if cmd.Flags().Changed("cf-min") {
		in.CFRatingMin = intPtr(c.cfMin)
	}
	if cmd.Flags().Changed("cf-max") {
		in.CFRatingMax = intPtr(c.cfMax)
	}
	if cmd.Flags().Changed("at-min") {
		in.ATDifficultyMin = intPtr(c.atMin)
	}
	if cmd.Flags().Changed("at-max") {
		in.ATDifficultyMax = intPtr(c.atMax)
	}
	return in, nil
}

func intPtr(v int) *int { return &v }

// parseSpec parses "platform", "platform:min-max", "platform:min-" or
// "platform:-max".
func parseSpec(raw string) (domain.ProblemSpec, error) {
	platform, bounds, hasBounds := strings.Cut(raw, ":")
	spec := domain.ProblemSpec{}
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "codeforces", "cf":
		spec.Platform = domain.PlatformCodeforces
	case "atcoder", "at":
		spec.Platform = domain.PlatformAtCoder
	default:
		return spec, fmt.Errorf("spec %q: unknown platform", raw)
	}
	if !hasBounds || bounds == "" {
		return spec, nil
	}
	lo, hi, ok := strings.Cut(bounds, "-")
	if !ok {
		return spec, fmt.Errorf("spec %q: bounds must be min-max", raw)
	}
	if lo != "" {
		v, err := strconv.Atoi(lo)
		if err != nil {
			return spec, fmt.Errorf("spec %q: bad minimum: %w", raw, err)
		}
		spec.Min = intPtr(v)
	}
	if hi != "" {
		v, err := strconv.Atoi(hi)
		if err != nil {
			return spec, fmt.Errorf("spec %q: bad maximum: %w", raw, err)
		}
		spec.Max = intPtr(v)
	}
	return spec, nil
}

func newContestCreateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &createFlags{}
	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a contest from a seeded problem draw",
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

			contest, err := app.Session.CreateContest(cmd.Context(), in)
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(contest)
			}
			return f.Success(formatContest(contest))
		},
	}
	flags.register(cmd)
	return cmd
}

func formatContest(c *domain.Contest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "contest %s (%s, %s)\n", c.ID, c.Name, c.Status)
	for i, p := range c.Problems {
		diff := "?"
		if p.Difficulty != nil {
			diff = strconv.Itoa(*p.Difficulty)
		}
		fmt.Fprintf(&b, "  %d. [%s %s] %s (%s)\n", i+1, p.Platform, diff, p.Name, p.URL)
	}
	fmt.Fprintf(&b, "  solved %d/%d", len(c.Progress.Solved), len(c.Problems))
	return b.String()
}

func newContestListCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the owner's contests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return f.Fail(err)
			}
			defer app.Close()

			contests, err := app.Session.ListContests(cmd.Context(), owner)
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(contests)
			}
			var b strings.Builder
			for _, c := range contests {
				fmt.Fprintf(&b, "%s  %-10s %s (%d problems, %d solved)\n",
					c.ID, c.Status, c.Name, len(c.Problems), len(c.Progress.Solved))
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newContestLifecycleCommand(rootOpts *RootOptions, verb, short string) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           verb + " <contest-id>",
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

			var contest *domain.Contest
			switch verb {
			case "start":
				contest, err = app.Session.StartContest(cmd.Context(), owner, args[0])
			case "finish":
				contest, err = app.Session.FinishContest(cmd.Context(), owner, args[0])
			}
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(contest)
			}
			return f.Success(fmt.Sprintf("contest %s is now %s", contest.ID, contest.Status))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newContestRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           "refresh <contest-id>",
		Short:         "Poll the judges once for a running contest",
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

			contest, flags, err := app.Poll.RefreshContest(cmd.Context(), owner, args[0])
			if err != nil {
				return f.Fail(err)
			}
			if rootOpts.Format == "json" {
				return f.Success(map[string]any{"contest": contest, "polled": flags})
			}
			return f.Success(fmt.Sprintf("%s\n  polled codeforces=%v atcoder=%v",
				formatContest(contest), flags.Codeforces, flags.AtCoder))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newContestDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           "delete <contest-id>",
		Short:         "Delete a finished or unstarted contest",
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

			if err := app.Session.DeleteContest(cmd.Context(), owner, args[0]); err != nil {
				return f.Fail(err)
			}
			return f.Success(fmt.Sprintf("deleted contest %s", args[0]))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
