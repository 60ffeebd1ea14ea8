package poll

import (
	"context"
	"sync"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/judge"
)

// platformFetch is one platform's fetch outcome for one subject.
type platformFetch struct {
	attempted   bool
	ok          bool
	requestFrom int64
	subs        []judge.Submission
}

// subjectFetch holds one user's fetch outcomes for a round.
type subjectFetch struct {
	userID     string
	byPlatform map[domain.Platform]*platformFetch
}

func (f *subjectFetch) flags() PolledFlags {
	flags := PolledFlags{}
	if pf := f.byPlatform[domain.PlatformCodeforces]; pf != nil {
		flags.Codeforces = pf.ok
	}
	if pf := f.byPlatform[domain.PlatformAtCoder]; pf != nil {
		flags.AtCoder = pf.ok
	}
	return flags
}

// cfCursor is the Codeforces fetch lower bound: the stored cursor, or
// the session start for the first round.
func cfCursor(startedAt int64, prog domain.Progress) int64 {
	if prog.LastPoll.CFFrom > startedAt {
		return prog.LastPoll.CFFrom
	}
	return startedAt
}

// atCursor is the AtCoder fetch lower bound: the stored cursor minus the
// overlap window, clamped to the session start. The overlap re-fetches a
// slice of already-seen history because the aggregator can surface
// submissions late; the matcher's write-once rule makes the re-fetch
// harmless.
func atCursor(startedAt int64, prog domain.Progress, overlapSeconds int64) int64 {
	from := prog.LastPoll.ATFrom - overlapSeconds
	if from < startedAt {
		from = startedAt
	}
	return from
}

// handleFor returns the subject's linked handle for p, or "".
func handleFor(user *domain.User, p domain.Platform) string {
	switch p {
	case domain.PlatformCodeforces:
		return user.CFHandle
	case domain.PlatformAtCoder:
		return user.AtCoderUser
	}
	return ""
}

// fetchSubject fetches submissions for one user across the platforms the
// session's problem set uses. The two platform calls run concurrently;
// each is throttled by its own client. A platform without a linked
// handle is not attempted. Fetch errors are recorded per platform and
// never abort the other platform's call.
func (o *Orchestrator) fetchSubject(
	ctx context.Context,
	problems []domain.NormalizedProblem,
	startedAt int64,
	prog domain.Progress,
	user *domain.User,
) *subjectFetch {
	out := &subjectFetch{
		userID:     user.ID,
		byPlatform: map[domain.Platform]*platformFetch{},
	}

	overlap := int64(o.opts.Overlap.Seconds())
	var wg sync.WaitGroup
	for _, platform := range domain.Platforms {
		if !sessionUsesPlatform(problems, platform) {
			continue
		}
		handle := handleFor(user, platform)
		if handle == "" {
			continue
		}
		client := o.clients.For(platform)
		if client == nil {
			continue
		}

		var from int64
		switch platform {
		case domain.PlatformCodeforces:
			from = cfCursor(startedAt, prog)
		case domain.PlatformAtCoder:
			from = atCursor(startedAt, prog, overlap)
		}

		pf := &platformFetch{attempted: true, requestFrom: from}
		out.byPlatform[platform] = pf

		wg.Add(1)
		go func(platform domain.Platform) {
			defer wg.Done()
			subs, err := client.UserSubmissions(ctx, handle, from)
			if err != nil {
				o.logger.Warn("submission fetch failed",
					"platform", platform,
					"user", user.ID,
					"error", err)
				return
			}
			pf.ok = true
			pf.subs = subs
		}(platform)
	}
	wg.Wait()
	return out
}

func sessionUsesPlatform(problems []domain.NormalizedProblem, p domain.Platform) bool {
	for _, pr := range problems {
		if pr.Platform == p {
			return true
		}
	}
	return false
}
