package progression

import (
	"fmt"
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// ─── Pure diffing ───────────────────────────────────────────────────────────

// Diff returns the per-metric delta between a baseline and a current set of
// cumulative counters. Every metric floors at zero: a revoked commit or
// force-push can make raw subtraction negative, and counters must never
// regress a progress bar.
func Diff(current, baseline domain.ActivityCounters) domain.StatsDelta {
	return domain.StatsDelta{
		Commits:       flooredSub(current.Commits, baseline.Commits),
		Prs:           flooredSub(current.Prs, baseline.Prs),
		Reviews:       flooredSub(current.Reviews, baseline.Reviews),
		Issues:        flooredSub(current.Issues, baseline.Issues),
		StarsReceived: flooredSub(current.StarsReceived, baseline.StarsReceived),
		Contributions: flooredSub(current.Contributions, baseline.Contributions),
	}
}

func flooredSub(a, b int64) int64 {
	if a <= b {
		return 0
	}
	return a - b
}

// HistoryFromSnapshots computes trailing-4-week totals from a snapshot
// series ordered oldest first. Totals are the sum of positive day-over-day
// deltas inside the window; a day is active if any metric moved.
func HistoryFromSnapshots(snaps []domain.StatsSnapshot, now time.Time) domain.HistoricalStats {
	var h domain.HistoricalStats
	cutoff := DayOf(now).AddDate(0, 0, -28)

	var prev *domain.StatsSnapshot
	for i := range snaps {
		s := snaps[i]
		if prev != nil && !s.Date.Before(cutoff) {
			d := Diff(s.Counters, prev.Counters)
			h.Commits4w += d.Commits
			h.Prs4w += d.Prs
			h.Reviews4w += d.Reviews
			h.Issues4w += d.Issues
			if !d.IsZero() {
				h.ActiveDays4w++
			}
		}
		prev = &snaps[i]
	}
	return h
}

// DayOf truncates a time to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ─── Snapshot service ───────────────────────────────────────────────────────

// SnapshotService persists dated snapshots and answers baseline lookups.
type SnapshotService struct {
	db *sqlite.DB
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(db *sqlite.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// Save upserts the snapshot row for (user, day of date). Only the row for
// the same day is ever overwritten — earlier days are immutable history.
func (s *SnapshotService) Save(userID string, counters domain.ActivityCounters, date time.Time) error {
	snap := domain.StatsSnapshot{
		UserID:   userID,
		Date:     DayOf(date),
		Counters: counters,
	}
	if err := s.db.UpsertSnapshot(snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Previous returns the most recent snapshot taken on or before the given
// date's day, or nil when the user has no history yet — a valid outcome, not
// an error. Today's row counts: a second sync on the same day must diff
// against the first sync's row, not yesterday's, or the day's delta would be
// counted twice.
func (s *SnapshotService) Previous(userID string, before time.Time) (*domain.StatsSnapshot, error) {
	return s.db.PreviousSnapshot(userID, DayOf(before).AddDate(0, 0, 1))
}

// History computes trailing-4-week historical stats for a user.
func (s *SnapshotService) History(userID string, now time.Time) (domain.HistoricalStats, error) {
	snaps, err := s.db.SnapshotsSince(userID, DayOf(now).AddDate(0, 0, -29))
	if err != nil {
		return domain.HistoricalStats{}, fmt.Errorf("load snapshot history: %w", err)
	}
	return HistoryFromSnapshots(snaps, now), nil
}
