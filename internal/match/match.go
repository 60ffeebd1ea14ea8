// Package match maps raw judge submissions to newly-credited problem
// solves for one session.
//
// The matcher is a pure function: it never mutates its inputs and its
// output depends only on them. Crediting is write-once per problem key;
// feeding the same (or a superset) batch again with the accumulated
// solved map yields no further additions, which makes the poll loop
// idempotent by construction.
package match

import (
	"sort"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/judge"
)

// Additions returns the solves newly credited by submissions.
//
// A submission qualifies only if its verdict is accepted, it was created
// at or after startedAt, its problem key belongs to the session's
// problem set on the given platform, and the key is not already credited
// (in existingSolved or earlier in this batch). Submissions are
// processed in ascending timestamp order, so the earliest qualifying
// submission wins when a problem was accepted more than once.
func Additions(
	problems []domain.NormalizedProblem,
	platform domain.Platform,
	startedAt int64,
	existingSolved map[string]domain.SolvedInfo,
	submissions []judge.Submission,
) map[string]domain.SolvedInfo {
	keys := make(map[string]bool, len(problems))
	for _, p := range problems {
		if p.Platform == platform {
			keys[p.Key] = true
		}
	}

	sorted := make([]judge.Submission, len(submissions))
	copy(sorted, submissions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At < sorted[j].At
	})

	additions := map[string]domain.SolvedInfo{}
	for _, s := range sorted {
		if s.Verdict != judge.VerdictAccepted {
			continue
		}
		if s.At < startedAt {
			continue
		}
		if !keys[s.Key] {
			continue
		}
		if _, ok := existingSolved[s.Key]; ok {
			continue
		}
		if _, ok := additions[s.Key]; ok {
			continue
		}
		additions[s.Key] = domain.SolvedInfo{
			SolvedAt:         s.At,
			SolveTimeSeconds: s.At - startedAt,
			Source:           platform,
			SubmissionID:     s.ID,
		}
	}
	return additions
}
