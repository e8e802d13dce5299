package domain

import "time"

// ─── Challenge Types ────────────────────────────────────────────────────────

// ChallengeType is the challenge horizon.
type ChallengeType string

const (
	ChallengeDaily  ChallengeType = "daily"
	ChallengeWeekly ChallengeType = "weekly"
)

// Valid reports whether the type is a known horizon.
func (t ChallengeType) Valid() bool {
	return t == ChallengeDaily || t == ChallengeWeekly
}

// TargetMetric is the activity counter a challenge is measured on.
type TargetMetric string

const (
	MetricCommits TargetMetric = "commits"
	MetricPrs     TargetMetric = "prs"
	MetricReviews TargetMetric = "reviews"
	MetricIssues  TargetMetric = "issues"
)

// Metrics lists every challenge-eligible metric in canonical order.
func Metrics() []TargetMetric {
	return []TargetMetric{MetricCommits, MetricPrs, MetricReviews, MetricIssues}
}

// Valid reports whether the metric is challenge-eligible.
func (m TargetMetric) Valid() bool {
	switch m {
	case MetricCommits, MetricPrs, MetricReviews, MetricIssues:
		return true
	}
	return false
}

// ChallengeStatus is the lifecycle state. Transitions only move forward:
// active→completed or active→failed; terminal states are immutable.
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

// Challenge is a time-boxed target on one activity metric, paying a one-time
// XP reward on completion.
// Invariants: 0 <= CurrentValue <= TargetValue; completed implies CompletedAt
// set and CurrentValue == TargetValue.
type Challenge struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         ChallengeType   `json:"challenge_type"`
	Metric       TargetMetric    `json:"target_metric"`
	TargetValue  int64           `json:"target_value"`
	CurrentValue int64           `json:"current_value"`
	RewardXP     int64           `json:"reward_xp"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Status       ChallengeStatus `json:"status"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`

	// StartStats captures the cumulative counters at creation time — the
	// baseline a long-running challenge measures progress against, instead
	// of whatever the last sync happened to be.
	StartStats *ActivityCounters `json:"start_stats,omitempty"`
}

// IsExpired reports whether the challenge window closed before now.
func (c Challenge) IsExpired(now time.Time) bool {
	return now.After(c.EndDate)
}

// ProgressPct returns completion percentage (0–100).
func (c Challenge) ProgressPct() float64 {
	if c.TargetValue <= 0 {
		return 100.0
	}
	pct := float64(c.CurrentValue) / float64(c.TargetValue) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// ChallengeTemplate seeds an auto-generated challenge before it is persisted.
type ChallengeTemplate struct {
	Type        ChallengeType `json:"challenge_type"`
	Metric      TargetMetric  `json:"target_metric"`
	TargetValue int64         `json:"target_value"`
	RewardXP    int64         `json:"reward_xp"`
}

// ChallengeUpdateResult describes one progress application. JustCompleted is
// edge-triggered on the active→completed transition — a second application
// of the same progress reports false, which is what keeps XP awarding
// exactly-once for a serialized caller.
type ChallengeUpdateResult struct {
	ChallengeID   string `json:"challenge_id"`
	OldValue      int64  `json:"old_value"`
	NewValue      int64  `json:"new_value"`
	TargetValue   int64  `json:"target_value"`
	JustCompleted bool   `json:"just_completed"`
	RewardXP      int64  `json:"reward_xp"`
}

// CompletionEvent signals that a challenge just completed and the caller owes
// the user its reward.
type CompletionEvent struct {
	ChallengeID string    `json:"challenge_id"`
	RewardXP    int64     `json:"reward_xp"`
	CompletedAt time.Time `json:"completed_at"`
}
