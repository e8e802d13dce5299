// Package progression implements the gitquest gamification rules engine:
// the XP/level model, snapshot diffing, the badge evaluator, and the
// challenge lifecycle. The core functions are pure — they describe side
// effects (award N XP, mark completed) through return values, and the
// services in this package are the serialized callers that persist them.
package progression

import (
	"math"

	"github.com/gitquest-dev/gitquest/internal/domain"
)

// MaxLevel caps the level curve. XPToNextLevel returns 0 at the cap.
const MaxLevel = 100

// XPForLevel returns the cumulative XP required to reach a given level.
// Quadratic curve: 50*(level-1)^2, so level-up cost grows with level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return 50 * n * n
}

// LevelForXP returns the level for a given XP amount — the algebraic inverse
// of XPForLevel, clamped to [1, MaxLevel].
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Sqrt(float64(xp)/50.0) + 1)
	if level < 1 {
		return 1
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// XPToNextLevel returns XP remaining until the next level, saturating at 0.
func XPToNextLevel(xp int64) int64 {
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 0
	}
	remaining := XPForLevel(level+1) - xp
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ProgressToNextLevel returns progress through the current level band as a
// percentage (0.0–100.0). At MaxLevel, or on a degenerate zero-width band,
// returns 100.0.
func ProgressToNextLevel(xp int64) float64 {
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 100.0
	}
	floor := XPForLevel(level)
	ceil := XPForLevel(level + 1)
	span := ceil - floor
	if span <= 0 {
		return 100.0
	}
	pct := float64(xp-floor) / float64(span) * 100.0
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// LevelInfoForXP bundles the level view the API and CLI render.
func LevelInfoForXP(xp int64) domain.LevelInfo {
	return domain.LevelInfo{
		Level:       LevelForXP(xp),
		TotalXP:     xp,
		XPToNext:    XPToNextLevel(xp),
		ProgressPct: ProgressToNextLevel(xp),
	}
}
