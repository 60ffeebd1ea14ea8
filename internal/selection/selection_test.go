package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gauntlet/internal/domain"
)

func intp(v int) *int { return &v }

func cfProblem(key string, rating int) domain.NormalizedProblem {
	return domain.NormalizedProblem{
		Platform:   domain.PlatformCodeforces,
		Key:        key,
		Name:       "CF " + key,
		URL:        "https://codeforces.com/" + key,
		Difficulty: intp(rating),
	}
}

func atProblem(key string, difficulty int) domain.NormalizedProblem {
	return domain.NormalizedProblem{
		Platform:   domain.PlatformAtCoder,
		Key:        key,
		Name:       "AT " + key,
		URL:        "https://atcoder.jp/" + key,
		Difficulty: intp(difficulty),
	}
}

func ratedPool() []domain.NormalizedProblem {
	var pool []domain.NormalizedProblem
	for i := 0; i < 20; i++ {
		pool = append(pool, cfProblem(fmt.Sprintf("19%02dA", i), 800+i*50))
	}
	for i := 0; i < 10; i++ {
		pool = append(pool, atProblem(fmt.Sprintf("abc3%02d_a", i), 700+i*100))
	}
	return pool
}

func keysOf(problems []domain.NormalizedProblem) []string {
	keys := make([]string, len(problems))
	for i, p := range problems {
		keys[i] = p.Key
	}
	return keys
}

func TestCount_DeterministicForSeed(t *testing.T) {
	pool := ratedPool()

	a, err := Count("seed123", pool, 5)
	require.NoError(t, err)
	b, err := Count("seed123", pool, 5)
	require.NoError(t, err)

	assert.Equal(t, keysOf(a), keysOf(b))
}

func TestCount_IndependentOfPoolOrder(t *testing.T) {
	pool := ratedPool()
	reversed := make([]domain.NormalizedProblem, len(pool))
	for i, p := range pool {
		reversed[len(pool)-1-i] = p
	}

	a, err := Count("seed123", pool, 5)
	require.NoError(t, err)
	b, err := Count("seed123", reversed, 5)
	require.NoError(t, err)

	assert.Equal(t, keysOf(a), keysOf(b), "selection must not depend on input iteration order")
}

func TestCount_NamesDoNotAffectSelection(t *testing.T) {
	pool := ratedPool()
	renamed := make([]domain.NormalizedProblem, len(pool))
	copy(renamed, pool)
	for i := range renamed {
		renamed[i].Name = "different " + renamed[i].Name
	}

	a, err := Count("seed123", pool, 5)
	require.NoError(t, err)
	b, err := Count("seed123", renamed, 5)
	require.NoError(t, err)

	assert.Equal(t, keysOf(a), keysOf(b))
}

func TestCount_NotEnoughCandidates(t *testing.T) {
	pool := ratedPool()[:2]

	_, err := Count("s", pool, 3)
	require.Error(t, err)
	var nee *NotEnoughError
	require.ErrorAs(t, err, &nee)
	assert.Equal(t, 3, nee.Needed)
	assert.Equal(t, 2, nee.Got)
}

func TestCount_RatingWindowScenario(t *testing.T) {
	// Pool filtered to Codeforces rating [800,1200]; two independent
	// selections with the same seed must agree exactly.
	var pool []domain.NormalizedProblem
	for _, p := range ratedPool() {
		if p.Platform == domain.PlatformCodeforces && *p.Difficulty >= 800 && *p.Difficulty <= 1200 {
			pool = append(pool, p)
		}
	}
	require.GreaterOrEqual(t, len(pool), 3)

	a, err := Count("seed123", pool, 3)
	require.NoError(t, err)
	b, err := Count("seed123", pool, 3)
	require.NoError(t, err)
	assert.Equal(t, keysOf(a), keysOf(b))
}

func TestSpecs_SelectsInSpecOrder(t *testing.T) {
	pool := []domain.NormalizedProblem{
		cfProblem("1900A", 1200),
		atProblem("abc300_a", 900),
		cfProblem("1901A", 2400),
	}
	specs := []domain.ProblemSpec{
		{Platform: domain.PlatformCodeforces, Min: intp(1200), Max: intp(1200)},
		{Platform: domain.PlatformAtCoder, Min: intp(900), Max: intp(900)},
	}

	got, err := Specs("seed123", pool, specs)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1900A", got[0].Key, "spec 1 result must come first")
	assert.Equal(t, "abc300_a", got[1].Key)
}

func TestSpecs_FailureNamesSpecPosition(t *testing.T) {
	pool := []domain.NormalizedProblem{
		cfProblem("1900A", 1200),
		atProblem("abc300_a", 900),
	}
	specs := []domain.ProblemSpec{
		{Platform: domain.PlatformCodeforces, Min: intp(1200), Max: intp(1200)},
		{Platform: domain.PlatformAtCoder, Min: intp(900), Max: intp(900)},
		{Platform: domain.PlatformAtCoder, Min: intp(3000), Max: intp(4000)},
	}

	_, err := Specs("seed123", pool, specs)
	require.Error(t, err)
	var nee *NotEnoughError
	require.ErrorAs(t, err, &nee)
	assert.Equal(t, 3, nee.Position)
	assert.Contains(t, err.Error(), "problem 3")
}

func TestSpecs_NeverSelectsSameProblemTwice(t *testing.T) {
	pool := []domain.NormalizedProblem{
		cfProblem("1900A", 1000),
		cfProblem("1900B", 1000),
	}
	specs := []domain.ProblemSpec{
		{Platform: domain.PlatformCodeforces, Min: intp(1000), Max: intp(1000)},
		{Platform: domain.PlatformCodeforces, Min: intp(1000), Max: intp(1000)},
	}

	got, err := Specs("dup-check", pool, specs)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].Key, got[1].Key)
}

func TestSpecs_ProblemsWithoutDifficultyNeverMatchRanges(t *testing.T) {
	noDiff := domain.NormalizedProblem{Platform: domain.PlatformCodeforces, Key: "1900A", Name: "n"}
	specs := []domain.ProblemSpec{
		{Platform: domain.PlatformCodeforces, Min: intp(800), Max: intp(1200)},
	}

	_, err := Specs("s", []domain.NormalizedProblem{noDiff}, specs)
	require.Error(t, err)

	// Without a range constraint the same problem is eligible.
	got, err := Specs("s", []domain.NormalizedProblem{noDiff},
		[]domain.ProblemSpec{{Platform: domain.PlatformCodeforces}})
	require.NoError(t, err)
	assert.Equal(t, "1900A", got[0].Key)
}

func TestSpecs_Deterministic(t *testing.T) {
	pool := ratedPool()
	specs := []domain.ProblemSpec{
		{Platform: domain.PlatformCodeforces, Min: intp(800), Max: intp(1300)},
		{Platform: domain.PlatformAtCoder},
		{Platform: domain.PlatformCodeforces},
	}

	a, err := Specs("replay", pool, specs)
	require.NoError(t, err)
	b, err := Specs("replay", pool, specs)
	require.NoError(t, err)
	assert.Equal(t, keysOf(a), keysOf(b))
}

func TestSpecs_SingleCandidatePerSpecIsForced(t *testing.T) {
	// With exactly one eligible problem per spec, any seed must return
	// those problems in spec order.
	pool := []domain.NormalizedProblem{
		cfProblem("1900A", 1200),
		atProblem("abc300_a", 900),
	}
	specs := []domain.ProblemSpec{
		{Platform: domain.PlatformCodeforces, Min: intp(1200), Max: intp(1200)},
		{Platform: domain.PlatformAtCoder, Min: intp(900), Max: intp(900)},
	}

	for _, seed := range []string{"a", "b", "seed123"} {
		got, err := Specs(seed, pool, specs)
		require.NoError(t, err, "seed %q", seed)
		assert.Equal(t, []string{"1900A", "abc300_a"}, keysOf(got), "seed %q", seed)
	}
}
