// Package selection draws a session's problem list from a candidate
// pool, deterministically for a given seed.
//
// Two modes exist. Legacy mode shuffles the whole pool with the seeded
// RNG and takes the first N. Spec mode walks an ordered list of
// per-problem specs, filtering the remaining pool for each and drawing
// one index; the drawn problem leaves the pool so no problem is selected
// twice. Both modes sort the pool by key first, making the result
// independent of the caller's iteration order.
package selection

import (
	"fmt"
	"sort"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/seeded"
)

// NotEnoughError reports that a draw could not be satisfied. For spec
// mode, Position is the 1-based index of the failing spec.
type NotEnoughError struct {
	Position int
	Needed   int
	Got      int
}

// Error implements the error interface.
func (e *NotEnoughError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("not enough candidate problems for problem %d", e.Position)
	}
	return fmt.Sprintf("not enough candidate problems (needed %d, got %d)", e.Needed, e.Got)
}

// sortedPool returns a key-sorted copy of pool.
func sortedPool(pool []domain.NormalizedProblem) []domain.NormalizedProblem {
	out := make([]domain.NormalizedProblem, len(pool))
	copy(out, pool)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// Count selects n problems from pool by seeded shuffle (legacy mode).
func Count(seed string, pool []domain.NormalizedProblem, n int) ([]domain.NormalizedProblem, error) {
	if len(pool) < n {
		return nil, &NotEnoughError{Needed: n, Got: len(pool)}
	}
	shuffled := seeded.Shuffle(seeded.New(seed), sortedPool(pool))
	return shuffled[:n], nil
}

// Specs selects one problem per spec, in spec order. Each drawn problem
// is removed from the remaining pool before the next spec is processed.
func Specs(seed string, pool []domain.NormalizedProblem, specs []domain.ProblemSpec) ([]domain.NormalizedProblem, error) {
	rng := seeded.New(seed)
	remaining := sortedPool(pool)
	selected := make([]domain.NormalizedProblem, 0, len(specs))

	for i, spec := range specs {
		eligible := make([]int, 0, len(remaining))
		for idx, p := range remaining {
			if spec.Matches(p) {
				eligible = append(eligible, idx)
			}
		}
		if len(eligible) == 0 {
			return nil, &NotEnoughError{Position: i + 1}
		}

		pick := eligible[rng.IntN(len(eligible))]
		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick:pick], remaining[pick+1:]...)
	}
	return selected, nil
}
