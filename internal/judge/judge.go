// Package judge fetches normalized problem catalogs and per-user
// submission histories from the two supported judges.
//
// Each client owns a throttle.Throttler tuned to that judge's rate
// limit, so catalog refreshes and submission polls from any number of
// callers share one FIFO budget per integration. All outputs are
// normalized: problems become domain.NormalizedProblem and submissions
// become Submission with the platform's accepted verdict collapsed to
// VerdictAccepted.
package judge

import (
	"context"

	"github.com/roach88/gauntlet/internal/domain"
)

// Verdict values after normalization. Codeforces "OK" and AtCoder "AC"
// both map to VerdictAccepted; everything else becomes VerdictRejected.
const (
	VerdictAccepted = "accepted"
	VerdictRejected = "rejected"
)

// Submission is one raw submission record, normalized across judges.
type Submission struct {
	// ID is the platform submission id, stringified.
	ID string
	// Key is the platform-specific problem key ("1995A", "abc301_a").
	Key string
	// At is the submission creation time in source epoch seconds.
	At int64
	// Verdict is VerdictAccepted or VerdictRejected.
	Verdict string
}

// Client is one judge integration.
type Client interface {
	// Platform identifies the judge this client talks to.
	Platform() domain.Platform

	// Problems fetches the judge's full problem catalog, normalized.
	Problems(ctx context.Context) ([]domain.NormalizedProblem, error)

	// UserSubmissions fetches handle's submissions with creation time
	// >= fromEpochSeconds, where the judge's API supports a cursor.
	// Judges without cursor support return the full history and ignore
	// the cursor.
	UserSubmissions(ctx context.Context, handle string, fromEpochSeconds int64) ([]Submission, error)
}

// Clients bundles one client per platform.
type Clients struct {
	Codeforces Client
	AtCoder    Client
}

// For returns the client for p, or nil for an unknown platform.
func (c Clients) For(p domain.Platform) Client {
	switch p {
	case domain.PlatformCodeforces:
		return c.Codeforces
	case domain.PlatformAtCoder:
		return c.AtCoder
	}
	return nil
}
