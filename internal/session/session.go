// Package session creates and manages contests and rooms: deterministic
// problem selection at creation, lifecycle transitions, membership, and
// the room scoreboard.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gauntlet/internal/catalog"
	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/judge"
	"github.com/roach88/gauntlet/internal/selection"
	"github.com/roach88/gauntlet/internal/store"
)

// Service creates and manages sessions. All durable reads and writes go
// through the store; the catalog supplies the candidate pool.
type Service struct {
	store   *store.Store
	catalog *catalog.Catalog
	clients judge.Clients
	logger  *slog.Logger

	now   func() int64
	newID func() string
}

// New creates a session service.
func New(st *store.Store, cat *catalog.Catalog, clients judge.Clients, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		catalog: cat,
		clients: clients,
		logger:  logger,
		now:     func() int64 { return time.Now().Unix() },
		newID:   func() string { return uuid.NewString() },
	}
}

// PlatformSet flags which judges a legacy-mode creation draws from.
type PlatformSet struct {
	Codeforces bool
	AtCoder    bool
}

// CreateInput is the shared creation request for contests and rooms.
// Either ProblemSpecs (spec mode) or Count with Platforms and optional
// range filters (legacy mode) selects the problems.
type CreateInput struct {
	OwnerUserID     string
	Name            string
	DurationMinutes int

	Platforms PlatformSet
	Count     int

	ProblemSpecs []domain.ProblemSpec

	CFRatingMin     *int
	CFRatingMax     *int
	ATDifficultyMin *int
	ATDifficultyMax *int
	CFTags          []string

	ExcludeAlreadySolved bool
	Seed                 string
	StartImmediately     bool
}

func (in *CreateInput) includes(p domain.Platform) bool {
	if len(in.ProblemSpecs) > 0 {
		for _, s := range in.ProblemSpecs {
			if s.Platform == p {
				return true
			}
		}
		return false
	}
	switch p {
	case domain.PlatformCodeforces:
		return in.Platforms.Codeforces
	case domain.PlatformAtCoder:
		return in.Platforms.AtCoder
	}
	return false
}

func (in *CreateInput) validate() error {
	if in.DurationMinutes <= 0 {
		return domain.InvalidInput("duration must be positive")
	}
	if !in.includes(domain.PlatformCodeforces) && !in.includes(domain.PlatformAtCoder) {
		return domain.InvalidInput("select at least one platform")
	}
	if len(in.ProblemSpecs) == 0 && in.Count <= 0 {
		return domain.InvalidInput("problem count must be positive")
	}
	return nil
}

func inRange(difficulty, min, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	if difficulty == nil {
		return false
	}
	if min != nil && *difficulty < *min {
		return false
	}
	if max != nil && *difficulty > *max {
		return false
	}
	return true
}

// buildPool assembles the candidate pool for in: platform inclusion,
// the Codeforces tag filter, and in legacy mode the per-platform
// difficulty ranges.
func (s *Service) buildPool(ctx context.Context, in *CreateInput) ([]domain.NormalizedProblem, error) {
	full, err := s.catalog.Pool(ctx)
	if err != nil {
		return nil, err
	}

	specMode := len(in.ProblemSpecs) > 0

	var cf, at []domain.NormalizedProblem
	for _, p := range full {
		switch p.Platform {
		case domain.PlatformCodeforces:
			if in.includes(domain.PlatformCodeforces) {
				cf = append(cf, p)
			}
		case domain.PlatformAtCoder:
			if in.includes(domain.PlatformAtCoder) {
				at = append(at, p)
			}
		}
	}

	cf = catalog.FilterTags(cf, in.CFTags)
	if !specMode {
		cf = filterRange(cf, in.CFRatingMin, in.CFRatingMax)
		at = filterRange(at, in.ATDifficultyMin, in.ATDifficultyMax)
	}

	pool := append(cf, at...)
	if in.ExcludeAlreadySolved {
		pool, err = s.withoutSolved(ctx, in, pool)
		if err != nil {
			return nil, err
		}
	}
	return pool, nil
}

func filterRange(pool []domain.NormalizedProblem, min, max *int) []domain.NormalizedProblem {
	if min == nil && max == nil {
		return pool
	}
	var out []domain.NormalizedProblem
	for _, p := range pool {
		if inRange(p.Difficulty, min, max) {
			out = append(out, p)
		}
	}
	return out
}

// withoutSolved drops problems the owner has already solved on either
// judge. A fetch failure here is a hard error: silently keeping solved
// problems would defeat the request.
func (s *Service) withoutSolved(ctx context.Context, in *CreateInput, pool []domain.NormalizedProblem) ([]domain.NormalizedProblem, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	user := doc.FindUser(in.OwnerUserID)
	if user == nil {
		return nil, domain.NotFound("user %s not found", in.OwnerUserID)
	}

	solved := map[domain.Platform]map[string]bool{
		domain.PlatformCodeforces: {},
		domain.PlatformAtCoder:    {},
	}

	if in.includes(domain.PlatformCodeforces) && user.CFHandle != "" {
		subs, err := s.clients.Codeforces.UserSubmissions(ctx, user.CFHandle, 0)
		if err != nil {
			return nil, &domain.Error{
				Code:    domain.ErrCodeIntegrationFailure,
				Message: "failed to fetch Codeforces solved set (check handle)",
				Err:     err,
			}
		}
		for _, sub := range subs {
			if sub.Verdict == judge.VerdictAccepted {
				solved[domain.PlatformCodeforces][sub.Key] = true
			}
		}
	}

	if in.includes(domain.PlatformAtCoder) && user.AtCoderUser != "" {
		set, err := s.atcoderSolvedSet(ctx, user.AtCoderUser)
		if err != nil {
			return nil, &domain.Error{
				Code:    domain.ErrCodeIntegrationFailure,
				Message: "failed to fetch AtCoder solved set (check user id)",
				Err:     err,
			}
		}
		solved[domain.PlatformAtCoder] = set
	}

	var out []domain.NormalizedProblem
	for _, p := range pool {
		if solved[p.Platform][p.Key] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// atcoderSolvedSet walks the user's full submission history in pages.
// The aggregator serves at most 500 submissions per request; the walk is
// capped to bound creation latency on very active accounts.
func (s *Service) atcoderSolvedSet(ctx context.Context, handle string) (map[string]bool, error) {
	const (
		pageSize = 500
		maxPages = 30
	)

	solved := map[string]bool{}
	var from int64

	for page := 0; page < maxPages; page++ {
		subs, err := s.clients.AtCoder.UserSubmissions(ctx, handle, from)
		if err != nil {
			return nil, err
		}
		if len(subs) == 0 {
			break
		}

		var maxEpoch int64
		for _, sub := range subs {
			if sub.Verdict == judge.VerdictAccepted {
				solved[sub.Key] = true
			}
			if sub.At > maxEpoch {
				maxEpoch = sub.At
			}
		}

		if len(subs) < pageSize || maxEpoch <= from {
			break
		}
		from = maxEpoch + 1
	}
	return solved, nil
}

// selectProblems runs the deterministic draw for in over pool.
func selectProblems(in *CreateInput, seed string, pool []domain.NormalizedProblem) ([]domain.NormalizedProblem, error) {
	var (
		problems []domain.NormalizedProblem
		err      error
	)
	if len(in.ProblemSpecs) > 0 {
		problems, err = selection.Specs(seed, pool, in.ProblemSpecs)
	} else {
		problems, err = selection.Count(seed, pool, in.Count)
	}
	var ne *selection.NotEnoughError
	if errors.As(err, &ne) {
		return nil, &domain.Error{
			Code:    domain.ErrCodeNotEnoughCandidates,
			Message: "candidate selection failed",
			Err:     err,
		}
	}
	return problems, err
}

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newInviteCode returns a 10-character join code from an alphabet
// without easily-confused characters.
func newInviteCode() string {
	var buf [10]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = inviteAlphabet[int(b)&31]
	}
	return string(out)
}
