package poll

import (
	"fmt"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/match"
	"github.com/roach88/gauntlet/internal/stats"
)

// mergeOutcome is the side-channel data carried out of a merge
// transaction for the post-commit realtime fan-out.
type mergeOutcome struct {
	solved   map[string][]string               // userID -> newly credited keys
	unlocked map[string][]domain.AchievementID // userID -> newly unlocked
}

func newMergeOutcome() *mergeOutcome {
	return &mergeOutcome{
		solved:   map[string][]string{},
		unlocked: map[string][]domain.AchievementID{},
	}
}

func (m *mergeOutcome) anySolves() bool { return len(m.solved) > 0 }

// applySubject merges one subject's fetch results into their live
// progress record: credits new solves through the matcher and the stats
// engine, appends solve activity, and advances the watermarks of the
// platforms whose fetch succeeded. Failed platforms leave both their
// cursor and lastSync untouched.
func (o *Orchestrator) applySubject(
	doc *domain.Document,
	problems []domain.NormalizedProblem,
	startedAt int64,
	prog *domain.Progress,
	user *domain.User,
	f *subjectFetch,
	targetType, targetID string,
	out *mergeOutcome,
) {
	now := o.now()

	for _, platform := range domain.Platforms {
		pf := f.byPlatform[platform]
		if pf == nil || !pf.ok {
			continue
		}

		additions := match.Additions(problems, platform, startedAt, prog.Solved, pf.subs)
		for key, info := range additions {
			// the snapshot the matcher saw may be stale; re-check against
			// the live record so a concurrent round cannot double-credit
			if _, exists := prog.Solved[key]; exists {
				continue
			}
			prog.Solved[key] = info

			res := stats.ApplySolve(user, platform, info.SolvedAt, info.SolveTimeSeconds, difficultyOf(problems, platform, key))
			out.solved[user.ID] = append(out.solved[user.ID], key)
			out.unlocked[user.ID] = append(out.unlocked[user.ID], res.Unlocked...)

			doc.AppendActivity(domain.ActivityEvent{
				ID:          o.newID(),
				At:          info.SolvedAt,
				Kind:        domain.ActivitySolve,
				ActorUserID: user.ID,
				Target:      domain.ActivityTarget{Type: targetType, ID: targetID},
				Message:     fmt.Sprintf("%s solved %s", user.Username, nameOf(problems, platform, key)),
			})
		}

		switch platform {
		case domain.PlatformCodeforces:
			// the CF API has no server-side cursor, so the next round
			// only needs submissions from this instant on
			if now > prog.LastPoll.CFFrom {
				prog.LastPoll.CFFrom = now
			}
			prog.LastSync.Codeforces = now
		case domain.PlatformAtCoder:
			if next := atAdvance(pf); next > prog.LastPoll.ATFrom {
				prog.LastPoll.ATFrom = next
			}
			prog.LastSync.AtCoder = now
		}
	}
}

// atAdvance computes the next AtCoder cursor from a successful fetch:
// one past the newest submission seen, but never behind the request
// cursor. An empty batch proves nothing about lagging data upstream, so
// it does not move the cursor.
func atAdvance(pf *platformFetch) int64 {
	if len(pf.subs) == 0 {
		return 0
	}
	var maxEpoch int64
	for _, s := range pf.subs {
		if s.At > maxEpoch {
			maxEpoch = s.At
		}
	}
	next := maxEpoch + 1
	if pf.requestFrom > next {
		next = pf.requestFrom
	}
	return next
}

func difficultyOf(problems []domain.NormalizedProblem, platform domain.Platform, key string) *int {
	for _, p := range problems {
		if p.Platform == platform && p.Key == key {
			return p.Difficulty
		}
	}
	return nil
}

func nameOf(problems []domain.NormalizedProblem, platform domain.Platform, key string) string {
	for _, p := range problems {
		if p.Platform == platform && p.Key == key {
			return p.Name
		}
	}
	return key
}
