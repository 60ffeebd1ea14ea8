package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gauntlet/internal/domain"
)

// Fixture is a Client reading canned wire-format responses from disk
// instead of calling the judge. Used for offline mode and tests; the
// fixture files carry the exact JSON shapes the live APIs return.
//
// Expected files per platform:
//
//	codeforces: codeforces_problemset.problems.json, codeforces_user.status.json
//	atcoder:    atcoder_merged_problems.json, atcoder_problem_models.json,
//	            atcoder_user_submissions.json
type Fixture struct {
	platform domain.Platform
	dir      string
}

// NewFixture creates a fixture client for platform reading from dir.
func NewFixture(platform domain.Platform, dir string) *Fixture {
	return &Fixture{platform: platform, dir: dir}
}

// Platform implements Client.
func (f *Fixture) Platform() domain.Platform { return f.platform }

func (f *Fixture) read(name string, out any) error {
	raw, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	return nil
}

// Problems implements Client from fixture files.
func (f *Fixture) Problems(_ context.Context) ([]domain.NormalizedProblem, error) {
	switch f.platform {
	case domain.PlatformCodeforces:
		var resp cfProblemsetResponse
		if err := f.read("codeforces_problemset.problems.json", &resp); err != nil {
			return nil, err
		}
		var problems []domain.NormalizedProblem
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

	case domain.PlatformAtCoder:
		var merged []atMergedProblem
		if err := f.read("atcoder_merged_problems.json", &merged); err != nil {
			return nil, err
		}
		models := map[string]atProblemModel{}
		if err := f.read("atcoder_problem_models.json", &models); err != nil {
			return nil, err
		}
		var problems []domain.NormalizedProblem
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
	return nil, fmt.Errorf("fixture: unknown platform %q", f.platform)
}

// UserSubmissions implements Client from fixture files. The cursor is
// honored for atcoder fixtures to mirror the live API.
func (f *Fixture) UserSubmissions(_ context.Context, _ string, fromEpochSeconds int64) ([]Submission, error) {
	switch f.platform {
	case domain.PlatformCodeforces:
		var resp cfUserStatusResponse
		if err := f.read("codeforces_user.status.json", &resp); err != nil {
			return nil, err
		}
		var subs []Submission
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

	case domain.PlatformAtCoder:
		var raw []atSubmission
		if err := f.read("atcoder_user_submissions.json", &raw); err != nil {
			return nil, err
		}
		var subs []Submission
		for _, s := range raw {
			if s.EpochSecond < fromEpochSeconds {
				continue
			}
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
	return nil, fmt.Errorf("fixture: unknown platform %q", f.platform)
}
