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

const atBaseURL = "https://kenkoooo.com/atcoder"

// DefaultAtCoderInterval spaces AtCoder Problems API calls. The
// aggregator asks for at most one request per second.
const DefaultAtCoderInterval = 1100 * time.Millisecond

type atMergedProblem struct {
	ID        string `json:"id"`
	ContestID string `json:"contest_id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
}

type atProblemModel struct {
	Difficulty *int `json:"difficulty"`
}

type atSubmission struct {
	ID          int64  `json:"id"`
	EpochSecond int64  `json:"epoch_second"`
	ProblemID   string `json:"problem_id"`
	Result      string `json:"result"`
}

// AtCoder talks to the AtCoder Problems aggregator (kenkoooo.com).
type AtCoder struct {
	base     string
	fetch    *fetcher
	throttle *throttle.Throttler
}

// NewAtCoder creates an AtCoder Problems client with its own throttler.
func NewAtCoder(interval time.Duration) *AtCoder {
	return &AtCoder{
		base:     atBaseURL,
		fetch:    newFetcher(),
		throttle: throttle.New(interval),
	}
}

// Platform implements Client.
func (c *AtCoder) Platform() domain.Platform { return domain.PlatformAtCoder }

// Close releases the client's throttler.
func (c *AtCoder) Close() { c.throttle.Close() }

// Problems fetches merged-problems plus problem-models and joins them
// into the normalized catalog. Two throttled calls.
func (c *AtCoder) Problems(ctx context.Context) ([]domain.NormalizedProblem, error) {
	merged, err := throttle.Schedule(c.throttle, ctx, func(ctx context.Context) ([]atMergedProblem, error) {
		var out []atMergedProblem
		return out, c.fetch.getJSON(ctx, c.base+"/resources/merged-problems.json", &out)
	})
	if err != nil {
		return nil, fmt.Errorf("atcoder merged-problems: %w", err)
	}

	models, err := throttle.Schedule(c.throttle, ctx, func(ctx context.Context) (map[string]atProblemModel, error) {
		out := map[string]atProblemModel{}
		return out, c.fetch.getJSON(ctx, c.base+"/resources/problem-models.json", &out)
	})
	if err != nil {
		return nil, fmt.Errorf("atcoder problem-models: %w", err)
	}

	problems := make([]domain.NormalizedProblem, 0, len(merged))
	for _, p := range merged {
		name := p.Title
		if name == "" {
			name = p.Name
		}
		var difficulty *int
		if m, ok := models[p.ID]; ok {
			difficulty = m.Difficulty
		}
		problems = append(problems, domain.NormalizedProblem{
			Platform:   domain.PlatformAtCoder,
			Key:        p.ID,
			Name:       norm.NFC.String(name),
			URL:        fmt.Sprintf("https://atcoder.jp/contests/%s/tasks/%s", p.ContestID, p.ID),
			Difficulty: difficulty,
		})
	}
	return problems, nil
}

// UserSubmissions fetches handle's submissions with epoch_second >=
// fromEpochSeconds via the v3 user/submissions endpoint.
func (c *AtCoder) UserSubmissions(ctx context.Context, handle string, fromEpochSeconds int64) ([]Submission, error) {
	u := c.base + "/atcoder-api/v3/user/submissions?user=" + url.QueryEscape(handle) +
		"&from_second=" + strconv.FormatInt(fromEpochSeconds, 10)

	raw, err := throttle.Schedule(c.throttle, ctx, func(ctx context.Context) ([]atSubmission, error) {
		var out []atSubmission
		return out, c.fetch.getJSON(ctx, u, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("atcoder submissions %s: %w", handle, err)
	}

	subs := make([]Submission, 0, len(raw))
	for _, s := range raw {
		verdict := VerdictRejected
		if s.Result == "AC" {
			verdict = VerdictAccepted
		}
		subs = append(subs, Submission{
			ID:      strconv.FormatInt(s.ID, 10),
			Key:     s.ProblemID,
			At:      s.EpochSecond,
			Verdict: verdict,
		})
	}
	return subs, nil
}
