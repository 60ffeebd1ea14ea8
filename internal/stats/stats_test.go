package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gauntlet/internal/domain"
)

func newUser() *domain.User {
	return &domain.User{
		ID:       "u1",
		Username: "alice",
		Stats:    domain.UserStats{Achievements: map[domain.AchievementID]domain.Unlock{}},
	}
}

func intp(v int) *int { return &v }

func TestApplySolve_XPComposition(t *testing.T) {
	tests := []struct {
		name       string
		solveTime  int64
		difficulty *int
		wantXP     int64
	}{
		{"base only", 1000, nil, 10},
		{"difficulty bonus", 1000, intp(800), 10 + 8},
		{"fast solve bonus", 120, nil, 10 + 15},
		{"quick solve bonus", 400, nil, 10 + 5},
		{"fast plus difficulty", 60, intp(1200), 10 + 12 + 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUser()
			res := ApplySolve(u, domain.PlatformCodeforces, 1700000000, tt.solveTime, tt.difficulty)
			assert.Equal(t, tt.wantXP, res.XPDelta)
			assert.Equal(t, tt.wantXP, u.Stats.XP)
		})
	}
}

func TestApplySolve_CountsAndPlatformTotals(t *testing.T) {
	u := newUser()
	ApplySolve(u, domain.PlatformCodeforces, 1700000000, 1000, nil)
	ApplySolve(u, domain.PlatformAtCoder, 1700000100, 1000, nil)

	assert.Equal(t, 2, u.Stats.TotalSolved)
	assert.Equal(t, 1, u.Stats.SolvedByPlatform.Codeforces)
	assert.Equal(t, 1, u.Stats.SolvedByPlatform.AtCoder)
}

func TestApplySolve_FirstSolveAndSpeedrunner(t *testing.T) {
	u := newUser()
	res := ApplySolve(u, domain.PlatformCodeforces, 1700000000, 100, nil)

	assert.ElementsMatch(t,
		[]domain.AchievementID{domain.AchFirstSolve, domain.AchSpeedrunner},
		res.Unlocked)
	assert.Contains(t, u.Stats.Achievements, domain.AchFirstSolve)
}

func TestApplySolve_AchievementsUnlockOnce(t *testing.T) {
	u := newUser()
	first := ApplySolve(u, domain.PlatformCodeforces, 1700000000, 100, nil)
	require.Contains(t, first.Unlocked, domain.AchSpeedrunner)
	unlockedAt := u.Stats.Achievements[domain.AchSpeedrunner].UnlockedAt

	second := ApplySolve(u, domain.PlatformCodeforces, 1700009000, 100, nil)
	assert.NotContains(t, second.Unlocked, domain.AchSpeedrunner)
	assert.NotContains(t, second.Unlocked, domain.AchFirstSolve)
	assert.Equal(t, unlockedAt, u.Stats.Achievements[domain.AchSpeedrunner].UnlockedAt,
		"original unlock timestamp must not move")
}

func TestApplySolve_DualPlatform(t *testing.T) {
	u := newUser()
	res := ApplySolve(u, domain.PlatformCodeforces, 1700000000, 1000, nil)
	assert.NotContains(t, res.Unlocked, domain.AchDualPlatform)

	res = ApplySolve(u, domain.PlatformAtCoder, 1700000100, 1000, nil)
	assert.Contains(t, res.Unlocked, domain.AchDualPlatform)
}

func TestApplySolve_TenSolves(t *testing.T) {
	u := newUser()
	var last Result
	for i := 0; i < 10; i++ {
		last = ApplySolve(u, domain.PlatformCodeforces, 1700000000+int64(i), 1000, nil)
	}
	assert.Contains(t, last.Unlocked, domain.AchTenSolves)
}

func TestApplySolve_StreakTracking(t *testing.T) {
	const day = int64(86400)
	base := int64(1700006400) // mid-day UTC

	u := newUser()
	ApplySolve(u, domain.PlatformCodeforces, base, 1000, nil)
	assert.Equal(t, 1, u.Stats.StreakDays)

	// Same day: streak unchanged.
	ApplySolve(u, domain.PlatformCodeforces, base+100, 1000, nil)
	assert.Equal(t, 1, u.Stats.StreakDays)

	// Next two days extend the streak.
	ApplySolve(u, domain.PlatformCodeforces, base+day, 1000, nil)
	res := ApplySolve(u, domain.PlatformCodeforces, base+2*day, 1000, nil)
	assert.Equal(t, 3, u.Stats.StreakDays)
	assert.Contains(t, res.Unlocked, domain.AchStreak3)

	// A gap resets the streak.
	ApplySolve(u, domain.PlatformCodeforces, base+5*day, 1000, nil)
	assert.Equal(t, 1, u.Stats.StreakDays)
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{249, 1},
		{250, 2},
		{999, 2},
		{1000, 3},
		{-5, 1},
	}
	for _, tt := range tests {
		got := LevelForXP(tt.xp)
		assert.Equal(t, tt.level, got.Level, "xp=%d", tt.xp)
		assert.LessOrEqual(t, got.LevelStartXP, got.NextLevelXP)
	}
}

func TestLeaderboard_Ordering(t *testing.T) {
	doc := &domain.Document{
		Users: []domain.User{
			{ID: "u1", Username: "bob", Stats: domain.UserStats{XP: 100}},
			{ID: "u2", Username: "alice", Stats: domain.UserStats{XP: 300}},
			{ID: "u3", Username: "carol", Stats: domain.UserStats{XP: 100}},
		},
	}

	got := Leaderboard(doc, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "bob", got[1].Username, "XP ties break by username")
	assert.Equal(t, "carol", got[2].Username)
}

func TestLeaderboard_Limit(t *testing.T) {
	doc := &domain.Document{
		Users: []domain.User{
			{ID: "u1", Username: "a", Stats: domain.UserStats{XP: 3}},
			{ID: "u2", Username: "b", Stats: domain.UserStats{XP: 2}},
			{ID: "u3", Username: "c", Stats: domain.UserStats{XP: 1}},
		},
	}
	assert.Len(t, Leaderboard(doc, 2), 2)
	assert.Len(t, Leaderboard(doc, 0), 1, "limit floors at one entry")
}

func TestCatalog_CoversAllAchievementIDs(t *testing.T) {
	ids := map[domain.AchievementID]bool{}
	for _, def := range Catalog() {
		ids[def.ID] = true
	}
	for _, id := range []domain.AchievementID{
		domain.AchFirstSolve, domain.AchTenSolves, domain.AchFiftySolves,
		domain.AchDualPlatform, domain.AchStreak3, domain.AchStreak7,
		domain.AchSpeedrunner,
	} {
		assert.True(t, ids[id], "missing catalog entry for %s", id)
	}
}
