// Package stats is the achievement/XP engine. ApplySolve runs inside a
// store transaction and mutates the user record directly; the poller
// fans out the returned unlocks after the transaction commits.
package stats

import (
	"math"
	"sort"

	"github.com/roach88/gauntlet/internal/domain"
)

// XP award policy.
const (
	baseXP           = 10
	fastSolveSeconds = 180
	fastSolveBonus   = 15
	quickSolveSecs   = 600
	quickSolveBonus  = 5
)

// Rarity buckets achievements for display.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityEpic   Rarity = "epic"
)

// Definition describes one unlockable achievement.
type Definition struct {
	ID          domain.AchievementID `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Rarity      Rarity               `json:"rarity"`
}

// Catalog lists every achievement in display order.
func Catalog() []Definition {
	return []Definition{
		{domain.AchFirstSolve, "First Solve", "Solve your first problem", RarityCommon},
		{domain.AchTenSolves, "Ten Solves", "Solve 10 problems", RarityCommon},
		{domain.AchFiftySolves, "Fifty Solves", "Solve 50 problems", RarityRare},
		{domain.AchDualPlatform, "Dual Platform", "Solve problems on both Codeforces and AtCoder", RarityRare},
		{domain.AchStreak3, "3-Day Streak", "Be active 3 days in a row", RarityCommon},
		{domain.AchStreak7, "7-Day Streak", "Be active 7 days in a row", RarityEpic},
		{domain.AchSpeedrunner, "Speedrunner", "Solve a problem in 3 minutes or less", RarityRare},
	}
}

// LevelInfo describes a user's position on the XP curve.
type LevelInfo struct {
	Level        int   `json:"level"`
	LevelStartXP int64 `json:"levelStartXp"`
	NextLevelXP  int64 `json:"nextLevelXp"`
}

// LevelForXP maps total XP to a level: level = floor(sqrt(xp/250)) + 1.
func LevelForXP(xp int64) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	level := int(math.Sqrt(float64(xp)/250)) + 1
	return LevelInfo{
		Level:        level,
		LevelStartXP: int64(level-1) * int64(level-1) * 250,
		NextLevelXP:  int64(level) * int64(level) * 250,
	}
}

// Result reports the outcome of one ApplySolve call.
type Result struct {
	XPDelta  int64
	Unlocked []domain.AchievementID
}

// ApplySolve credits one solve against the user's stats: XP (base plus
// difficulty and speed bonuses), totals, streak-day tracking, and any
// newly crossed achievement thresholds. The user record is mutated in
// place; callers invoke this inside the same store transaction that
// records the solve.
func ApplySolve(user *domain.User, source domain.Platform, solvedAt, solveTimeSeconds int64, difficulty *int) Result {
	xp := int64(baseXP)
	if difficulty != nil {
		xp += int64(math.Round(float64(*difficulty) / 100))
	}
	switch {
	case solveTimeSeconds <= fastSolveSeconds:
		xp += fastSolveBonus
	case solveTimeSeconds <= quickSolveSecs:
		xp += quickSolveBonus
	}

	st := &user.Stats
	st.XP += xp
	st.TotalSolved++
	switch source {
	case domain.PlatformCodeforces:
		st.SolvedByPlatform.Codeforces++
	case domain.PlatformAtCoder:
		st.SolvedByPlatform.AtCoder++
	}

	dayID := solvedAt / 86400
	switch {
	case st.LastActiveDay == 0:
		st.LastActiveDay = dayID
		st.StreakDays = 1
	case dayID > st.LastActiveDay:
		if dayID-st.LastActiveDay == 1 {
			st.StreakDays++
		} else {
			st.StreakDays = 1
		}
		st.LastActiveDay = dayID
	}

	var unlocked []domain.AchievementID
	unlock := func(id domain.AchievementID) {
		if st.Achievements == nil {
			st.Achievements = map[domain.AchievementID]domain.Unlock{}
		}
		if _, ok := st.Achievements[id]; ok {
			return
		}
		st.Achievements[id] = domain.Unlock{UnlockedAt: solvedAt}
		unlocked = append(unlocked, id)
	}

	if st.TotalSolved >= 1 {
		unlock(domain.AchFirstSolve)
	}
	if st.TotalSolved >= 10 {
		unlock(domain.AchTenSolves)
	}
	if st.TotalSolved >= 50 {
		unlock(domain.AchFiftySolves)
	}
	if st.SolvedByPlatform.Codeforces > 0 && st.SolvedByPlatform.AtCoder > 0 {
		unlock(domain.AchDualPlatform)
	}
	if st.StreakDays >= 3 {
		unlock(domain.AchStreak3)
	}
	if st.StreakDays >= 7 {
		unlock(domain.AchStreak7)
	}
	if solveTimeSeconds <= fastSolveSeconds {
		unlock(domain.AchSpeedrunner)
	}

	return Result{XPDelta: xp, Unlocked: unlocked}
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	XP          int64  `json:"xp"`
	Level       int    `json:"level"`
	TotalSolved int    `json:"totalSolved"`
}

// Leaderboard ranks users by XP descending, then username, then id.
func Leaderboard(doc *domain.Document, limit int) []LeaderboardEntry {
	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}

	entries := make([]LeaderboardEntry, 0, len(doc.Users))
	for _, u := range doc.Users {
		entries = append(entries, LeaderboardEntry{
			UserID:      u.ID,
			Username:    u.Username,
			XP:          u.Stats.XP,
			Level:       LevelForXP(u.Stats.XP).Level,
			TotalSolved: u.Stats.TotalSolved,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.UserID < b.UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
