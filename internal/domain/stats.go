// Package domain holds the pure types of the gitquest gamification engine.
// Nothing in here touches storage or the network — the engine is a
// computation layer and these types cross its boundary.
package domain

import "time"

// ─── User Stats ─────────────────────────────────────────────────────────────

// UserStats is the per-user accumulator mutated by the sync layer.
// Invariants: CurrentLevel always equals LevelForXP(TotalXP) after any XP
// mutation, and LongestStreak >= CurrentStreak.
type UserStats struct {
	UserID           string    `json:"user_id"`
	TotalXP          int64     `json:"total_xp"`
	CurrentLevel     int       `json:"current_level"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate time.Time `json:"last_activity_date"`
	TotalCommits     int64     `json:"total_commits"`
	TotalPrs         int64     `json:"total_prs"`
	TotalReviews     int64     `json:"total_reviews"`
	TotalIssues      int64     `json:"total_issues"`
	TotalPrsMerged   int64     `json:"total_prs_merged"`
	LanguagesCount   int       `json:"languages_count"`
	StarsReceived    int64     `json:"stars_received"`
}

// SyncActivity is everything one sync run learns from the outside world:
// the cumulative counters plus the derived metrics the badge context needs.
type SyncActivity struct {
	Counters       ActivityCounters `json:"counters"`
	PrsMerged      int64            `json:"prs_merged"`
	LanguagesCount int              `json:"languages_count"`
}

// ─── Activity Counters & Snapshots ──────────────────────────────────────────

// ActivityCounters holds the cumulative totals observed at one point in time.
// These are raw GitHub counters — they usually only grow, but a force-push or
// revoked contribution can make them regress, which is why all diffing floors
// at zero.
type ActivityCounters struct {
	Commits       int64 `json:"commits"`
	Prs           int64 `json:"prs"`
	Reviews       int64 `json:"reviews"`
	Issues        int64 `json:"issues"`
	StarsReceived int64 `json:"stars_received"`
	Contributions int64 `json:"contributions"`
}

// Metric extracts one counter by target metric name.
func (c ActivityCounters) Metric(m TargetMetric) int64 {
	switch m {
	case MetricCommits:
		return c.Commits
	case MetricPrs:
		return c.Prs
	case MetricReviews:
		return c.Reviews
	case MetricIssues:
		return c.Issues
	}
	return 0
}

// StatsSnapshot is one dated row of cumulative totals, used purely as a
// diffing anchor. One row per (user, UTC date); only today's row is ever
// overwritten.
type StatsSnapshot struct {
	UserID   string           `json:"user_id"`
	Date     time.Time        `json:"date"` // UTC midnight of the snapshot day
	Counters ActivityCounters `json:"counters"`
}

// StatsDelta is the non-negative per-metric difference between two snapshots.
type StatsDelta struct {
	Commits       int64 `json:"commits"`
	Prs           int64 `json:"prs"`
	Reviews       int64 `json:"reviews"`
	Issues        int64 `json:"issues"`
	StarsReceived int64 `json:"stars_received"`
	Contributions int64 `json:"contributions"`
}

// Metric extracts one delta by target metric name.
func (d StatsDelta) Metric(m TargetMetric) int64 {
	switch m {
	case MetricCommits:
		return d.Commits
	case MetricPrs:
		return d.Prs
	case MetricReviews:
		return d.Reviews
	case MetricIssues:
		return d.Issues
	}
	return 0
}

// IsZero reports whether no metric moved.
func (d StatsDelta) IsZero() bool {
	return d.Commits == 0 && d.Prs == 0 && d.Reviews == 0 &&
		d.Issues == 0 && d.StarsReceived == 0 && d.Contributions == 0
}

// HistoricalStats summarizes the trailing four weeks of snapshot history.
// Ephemeral — computed on demand, only used to seed challenge targets.
type HistoricalStats struct {
	Commits4w    int64 `json:"commits_4w"`
	Prs4w        int64 `json:"prs_4w"`
	Reviews4w    int64 `json:"reviews_4w"`
	Issues4w     int64 `json:"issues_4w"`
	ActiveDays4w int   `json:"active_days_4w"`
}

// Metric extracts one four-week total by target metric name.
func (h HistoricalStats) Metric(m TargetMetric) int64 {
	switch m {
	case MetricCommits:
		return h.Commits4w
	case MetricPrs:
		return h.Prs4w
	case MetricReviews:
		return h.Reviews4w
	case MetricIssues:
		return h.Issues4w
	}
	return 0
}

// ─── XP History ─────────────────────────────────────────────────────────────

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPChallengeCompleted XPSource = "challenge_completed"
	XPBadgeEarned        XPSource = "badge_earned"
	XPActivity           XPSource = "activity"
)

// XPEvent is one persisted XP-history row.
type XPEvent struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Source    XPSource  `json:"source"`
	Reference string    `json:"reference"` // challenge or badge id
	CreatedAt time.Time `json:"created_at"`
}

// ─── Level Info ─────────────────────────────────────────────────────────────

// LevelInfo is the render-ready view of a user's level progress.
type LevelInfo struct {
	Level       int     `json:"level"`
	TotalXP     int64   `json:"total_xp"`
	XPToNext    int64   `json:"xp_to_next"`
	ProgressPct float64 `json:"progress_pct"`
}
