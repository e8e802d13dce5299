// Package metrics provides Prometheus metrics for gitquest — counters and
// histograms for XP flow, levels, badges, challenges, and sync runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── XP & Levels ────────────────────────────────────────────────────────────

// XPAwarded tracks XP granted, labeled by source.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded, by source.",
}, []string{"source"})

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesEarned tracks earned badges by rarity.
var BadgesEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "badges_earned_total",
	Help:      "Total badges earned, by rarity.",
}, []string{"rarity"})

// ─── Challenges ─────────────────────────────────────────────────────────────

// ChallengesGenerated tracks auto-generated challenges by horizon.
var ChallengesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "challenges_generated_total",
	Help:      "Total auto-generated challenges, by type.",
}, []string{"type"})

// ChallengesCompleted tracks completed challenges by metric.
var ChallengesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "challenges_completed_total",
	Help:      "Total completed challenges, by target metric.",
}, []string{"metric"})

// ChallengesFailed tracks challenges failed by the expiry sweep.
var ChallengesFailed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "challenges_failed_total",
	Help:      "Total challenges failed on expiry.",
})

// ─── Sync ───────────────────────────────────────────────────────────────────

// SyncDuration tracks how long a full sync run takes.
var SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "gitquest",
	Name:      "sync_duration_seconds",
	Help:      "Duration of a full per-user sync run.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// SyncRuns tracks sync outcomes.
var SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gitquest",
	Name:      "sync_runs_total",
	Help:      "Total sync runs, by outcome.",
}, []string{"outcome"})
