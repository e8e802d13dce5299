package progression

import (
	"fmt"
	"sync"
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
	"github.com/gitquest-dev/gitquest/internal/infra/metrics"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// SyncResult describes everything one sync run did.
type SyncResult struct {
	UserID     string                         `json:"user_id"`
	Delta      domain.StatsDelta              `json:"delta"`
	Updates    []domain.ChallengeUpdateResult `json:"challenge_updates"`
	Completed  []domain.CompletionEvent       `json:"completed_challenges"`
	NewBadges  []domain.BadgeEvalResult       `json:"new_badges"`
	XPAwarded  int64                          `json:"xp_awarded"`
	LeveledUp  bool                           `json:"leveled_up"`
	Stats      domain.UserStats               `json:"stats"`
}

// SyncService applies one observed activity state to a user: snapshot diff,
// challenge progress, XP awarding, streaks, and badge evaluation.
//
// All mutation for a user runs under a per-user mutex. That single-writer
// serialization is what turns the engine's edge-triggered completion signal
// into exactly-once XP awarding: two racing syncs cannot both observe the
// challenge in its active state.
type SyncService struct {
	db         *sqlite.DB
	snapshots  *SnapshotService
	challenges *ChallengeService
	badges     *BadgeService

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewSyncService creates a sync service.
func NewSyncService(db *sqlite.DB, snapshots *SnapshotService, challenges *ChallengeService, badges *BadgeService) *SyncService {
	return &SyncService{
		db:         db,
		snapshots:  snapshots,
		challenges: challenges,
		badges:     badges,
		users:      make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing writes for one user.
func (s *SyncService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mu, ok := s.users[userID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.users[userID] = mu
	return mu
}

// Apply runs a full sync for one user at the given instant.
func (s *SyncService) Apply(userID string, activity domain.SyncActivity, now time.Time) (*SyncResult, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	started := time.Now()
	result, err := s.apply(userID, activity, now)
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SyncRuns.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *SyncService) apply(userID string, activity domain.SyncActivity, now time.Time) (*SyncResult, error) {
	now = now.UTC()
	current := activity.Counters

	stats, err := s.db.GetUserStats(userID)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	if stats == nil {
		stats = &domain.UserStats{UserID: userID, CurrentLevel: 1}
	}
	oldLevel := stats.CurrentLevel

	prev, err := s.snapshots.Previous(userID, now)
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}
	var prevCounters domain.ActivityCounters
	if prev != nil {
		prevCounters = prev.Counters
	}

	result := &SyncResult{
		UserID: userID,
		Delta:  Diff(current, prevCounters),
	}

	// Fail overdue challenges before progressing the rest.
	expired, err := s.challenges.ExpireDue(userID, now)
	if err != nil {
		return nil, err
	}
	if expired > 0 {
		metrics.ChallengesFailed.Add(float64(expired))
	}

	// Progress every active challenge against its baseline.
	active, err := s.db.ActiveChallenges(userID)
	if err != nil {
		return nil, fmt.Errorf("load active challenges: %w", err)
	}
	for _, ch := range active {
		// Against a start-stats baseline the delta is the absolute progress
		// since the challenge began; against the previous-sync snapshot it
		// is incremental and accumulates onto the stored value.
		value := ProgressForMetric(ch.Metric, prevCounters, current, ch.StartStats)
		if ch.StartStats == nil {
			value += ch.CurrentValue
		}
		updated, update, event := ApplyProgress(ch, value, now)
		if updated.CurrentValue == ch.CurrentValue && updated.Status == ch.Status {
			continue
		}
		if err := s.db.UpdateChallenge(updated); err != nil {
			return nil, fmt.Errorf("update challenge %s: %w", ch.ID, err)
		}
		result.Updates = append(result.Updates, update)

		if event != nil {
			result.Completed = append(result.Completed, *event)
			if err := s.awardXP(stats, event.RewardXP, domain.XPChallengeCompleted, event.ChallengeID, now); err != nil {
				return nil, err
			}
			result.XPAwarded += event.RewardXP
			metrics.ChallengesCompleted.WithLabelValues(string(ch.Metric)).Inc()
		}
	}

	// XP for the raw activity itself, priced at the per-metric base rates.
	if activityXP := activityXP(result.Delta); activityXP > 0 {
		if err := s.awardXP(stats, activityXP, domain.XPActivity, "", now); err != nil {
			return nil, err
		}
		result.XPAwarded += activityXP
	}

	s.updateStreak(stats, result.Delta, now)

	// Mirror the cumulative counters into the accumulator.
	stats.TotalCommits = current.Commits
	stats.TotalPrs = current.Prs
	stats.TotalReviews = current.Reviews
	stats.TotalIssues = current.Issues
	stats.StarsReceived = current.StarsReceived
	stats.TotalPrsMerged = activity.PrsMerged
	stats.LanguagesCount = activity.LanguagesCount
	stats.CurrentLevel = LevelForXP(stats.TotalXP)

	if err := s.snapshots.Save(userID, current, now); err != nil {
		return nil, err
	}
	if err := s.db.UpsertUserStats(*stats); err != nil {
		return nil, fmt.Errorf("save user stats: %w", err)
	}

	// Badges come last so they see the post-sync stats, including any level
	// the challenge rewards just unlocked.
	newBadges, err := s.badges.CheckAndAward(userID, EvalContext(*stats), now)
	if err != nil {
		return nil, err
	}
	result.NewBadges = newBadges
	for _, b := range newBadges {
		metrics.BadgesEarned.WithLabelValues(string(b.Definition.Rarity)).Inc()
	}

	result.LeveledUp = stats.CurrentLevel > oldLevel
	if result.LeveledUp {
		metrics.LevelUps.Inc()
	}
	result.Stats = *stats
	return result, nil
}

// awardXP bumps the accumulator, keeps the level invariant, and writes the
// XP-history row the award is audited by.
func (s *SyncService) awardXP(stats *domain.UserStats, amount int64, source domain.XPSource, ref string, now time.Time) error {
	if amount <= 0 {
		return domain.ErrNonPositiveXP
	}
	stats.TotalXP += amount
	stats.CurrentLevel = LevelForXP(stats.TotalXP)

	if _, err := s.db.InsertXPEvent(domain.XPEvent{
		UserID:    stats.UserID,
		Amount:    amount,
		Source:    source,
		Reference: ref,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("record xp event: %w", err)
	}
	metrics.XPAwarded.WithLabelValues(string(source)).Add(float64(amount))
	return nil
}

// updateStreak advances the consecutive-day streak when the delta shows
// activity. Same day is a no-op, a one-day step extends, any gap resets.
// LongestStreak is a high-water mark and never decreases.
func (s *SyncService) updateStreak(stats *domain.UserStats, delta domain.StatsDelta, now time.Time) {
	if delta.IsZero() {
		return
	}

	today := DayOf(now)
	last := DayOf(stats.LastActivityDate)

	switch {
	case stats.LastActivityDate.IsZero():
		stats.CurrentStreak = 1
	case today.Equal(last):
		// Already counted today.
	case today.Equal(last.AddDate(0, 0, 1)):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}

	stats.LastActivityDate = today
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
}

// activityXP prices a raw activity delta at the per-metric base rates.
func activityXP(d domain.StatsDelta) int64 {
	return RewardXP(domain.MetricCommits, d.Commits) +
		RewardXP(domain.MetricPrs, d.Prs) +
		RewardXP(domain.MetricReviews, d.Reviews) +
		RewardXP(domain.MetricIssues, d.Issues)
}

// EvalContext flattens the accumulator into the snapshot badge conditions
// evaluate against. Weekly and monthly streaks derive from the daily streak.
func EvalContext(stats domain.UserStats) domain.BadgeEvalContext {
	return domain.BadgeEvalContext{
		TotalCommits:       stats.TotalCommits,
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		WeeklyStreak:       maxInt(stats.CurrentStreak, stats.LongestStreak) / 7,
		MonthlyStreak:      maxInt(stats.CurrentStreak, stats.LongestStreak) / 30,
		TotalReviews:       stats.TotalReviews,
		TotalPrs:           stats.TotalPrs,
		TotalPrsMerged:     stats.TotalPrsMerged,
		TotalIssuesClosed:  stats.TotalIssues,
		LanguagesCount:     stats.LanguagesCount,
		CurrentLevel:       stats.CurrentLevel,
		TotalStarsReceived: stats.StarsReceived,
	}
}
