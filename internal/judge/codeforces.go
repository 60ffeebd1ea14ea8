package judge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/throttle"
)

const cfBaseURL = "https://codeforces.com/api"

// DefaultCodeforcesInterval spaces Codeforces API calls. The API allows
// one call per two seconds per key; a small margin avoids 429s.
const DefaultCodeforcesInterval = 2100 * time.Millisecond

type cfProblem struct {
	ContestID *int     `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
}

type cfProblemsetResponse struct {
	Status string `json:"status"`
	Result struct {
		Problems []cfProblem `json:"problems"`
	} `json:"result"`
}

type cfSubmission struct {
	ID                  int64  `json:"id"`
	CreationTimeSeconds int64  `json:"creationTimeSeconds"`
	Verdict             string `json:"verdict"`
	Problem             struct {
		ContestID *int   `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
}

type cfUserStatusResponse struct {
	Status string         `json:"status"`
	Result []cfSubmission `json:"result"`
}

// Codeforces talks to the official Codeforces API.
type Codeforces struct {
	base     string
	fetch    *fetcher
	throttle *throttle.Throttler
}

// NewCodeforces creates a Codeforces client with its own throttler.
func NewCodeforces(interval time.Duration) *Codeforces {
	return &Codeforces{
		base:     cfBaseURL,
		fetch:    newFetcher(),
		throttle: throttle.New(interval),
	}
}

// Platform implements Client.
func (c *Codeforces) Platform() domain.Platform { return domain.PlatformCodeforces }

// Close releases the client's throttler.
func (c *Codeforces) Close() { c.throttle.Close() }

// Problems fetches problemset.problems and normalizes it. Problems
// without a contest id (acmsguru archive) are skipped; their keys would
// not be stable.
func (c *Codeforces) Problems(ctx context.Context) ([]domain.NormalizedProblem, error) {
	resp, err := throttle.Schedule(c.throttle, ctx, func(ctx context.Context) (*cfProblemsetResponse, error) {
		out := &cfProblemsetResponse{}
		return out, c.fetch.getJSON(ctx, c.base+"/problemset.problems", out)
	})
	if err != nil {
		return nil, fmt.Errorf("codeforces problemset: %w", err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("codeforces problemset: status %q", resp.Status)
	}

	problems := make([]domain.NormalizedProblem, 0, len(resp.Result.Problems))
	for _, p := range resp.Result.Problems {
		if p.ContestID == nil {
			continue
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		problems = append(problems, domain.NormalizedProblem{
			Platform:   domain.PlatformCodeforces,
			Key:        fmt.Sprintf("%d%s", *p.ContestID, p.Index),
			Name:       norm.NFC.String(p.Name),
			URL:        fmt.Sprintf("https://codeforces.com/contest/%d/problem/%s", *p.ContestID, p.Index),
			Difficulty: p.Rating,
			Tags:       tags,
		})
	}
	return problems, nil
}

// UserSubmissions fetches user.status for handle. The Codeforces API has
// no time cursor, so the full history is returned and fromEpochSeconds
// is ignored; the matcher filters by session start.
func (c *Codeforces) UserSubmissions(ctx context.Context, handle string, _ int64) ([]Submission, error) {
	u := c.base + "/user.status?handle=" + url.QueryEscape(handle)
	resp, err := throttle.Schedule(c.throttle, ctx, func(ctx context.Context) (*cfUserStatusResponse, error) {
		out := &cfUserStatusResponse{}
		return out, c.fetch.getJSON(ctx, u, out)
	})
	if err != nil {
		return nil, fmt.Errorf("codeforces user.status %s: %w", handle, err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("codeforces user.status %s: status %q", handle, resp.Status)
	}

	subs := make([]Submission, 0, len(resp.Result))
	for _, s := range resp.Result {
		if s.Problem.ContestID == nil {
			continue
		}
		verdict := VerdictRejected
		if s.Verdict == "OK" {
			verdict = VerdictAccepted
		}
		subs = append(subs, Submission{
			ID:      strconv.FormatInt(s.ID, 10),
			Key:     fmt.Sprintf("%d%s", *s.Problem.ContestID, s.Problem.Index),
			At:      s.CreationTimeSeconds,
			Verdict: verdict,
		})
	}
	return subs, nil
}
