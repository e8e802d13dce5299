package progression

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gitquest-dev/gitquest/internal/domain"
	"github.com/gitquest-dev/gitquest/internal/infra/metrics"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// ─── Period calculation ─────────────────────────────────────────────────────

// CalculatePeriod returns the (start, end) window for a challenge created at
// now. Daily challenges end at the next UTC midnight. Weekly challenges end
// at the Monday midnight that starts the following week; a challenge created
// on Sunday rolls a full further week — it always runs through the next
// Sunday, never a one-day window. An unknown type falls back to a flat
// 7-day window.
func CalculatePeriod(ctype domain.ChallengeType, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	switch ctype {
	case domain.ChallengeDaily:
		return now, DayOf(now).AddDate(0, 0, 1)
	case domain.ChallengeWeekly:
		days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		// days==0 is Monday itself (the next boundary is a week out);
		// days==1 is Sunday, where ending tomorrow would be a same-day
		// window — both roll forward a full week.
		if days <= 1 {
			days += 7
		}
		return now, DayOf(now).AddDate(0, 0, days)
	}
	return now, now.AddDate(0, 0, 7)
}

// WeekStart returns the Monday UTC midnight that starts now's week.
func WeekStart(now time.Time) time.Time {
	day := DayOf(now)
	offset := (int(now.UTC().Weekday()) - int(time.Monday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// ─── Reward sizing ──────────────────────────────────────────────────────────

// baseXP is the fixed per-unit XP price of each metric.
var baseXP = map[domain.TargetMetric]int64{
	domain.MetricCommits: 10,
	domain.MetricReviews: 20,
	domain.MetricIssues:  25,
	domain.MetricPrs:     40,
}

// RewardXP prices a challenge: base(metric) * target. Reward scales linearly
// with difficulty; an unrecognized metric prices at the commit rate.
func RewardXP(metric domain.TargetMetric, target int64) int64 {
	base, ok := baseXP[metric]
	if !ok {
		base = 10
	}
	return base * target
}

// ─── Target recommendation ──────────────────────────────────────────────────

// TargetFloors holds the per-metric minimum recommended targets, so a
// low-activity user is never handed a target of zero.
type TargetFloors struct {
	Commits int64
	Prs     int64
	Reviews int64
	Issues  int64
}

// DefaultTargetFloors floors every metric at 1.
func DefaultTargetFloors() TargetFloors {
	return TargetFloors{Commits: 1, Prs: 1, Reviews: 1, Issues: 1}
}

// Floor returns the floor for one metric.
func (f TargetFloors) Floor(m domain.TargetMetric) int64 {
	switch m {
	case domain.MetricCommits:
		return f.Commits
	case domain.MetricPrs:
		return f.Prs
	case domain.MetricReviews:
		return f.Reviews
	case domain.MetricIssues:
		return f.Issues
	}
	return 1
}

// RecommendTarget derives a challenge target from trailing-4-week history.
// Daily targets use the per-active-day average ×1.0; weekly targets use the
// per-week average ×1.1 — a 10% stretch for the longer horizon. The result
// is rounded up and clamped to the metric's floor.
func RecommendTarget(ctype domain.ChallengeType, metric domain.TargetMetric, hist domain.HistoricalStats, floors TargetFloors) int64 {
	total := float64(hist.Metric(metric))

	var avg float64
	switch ctype {
	case domain.ChallengeWeekly:
		avg = total / 4.0 * 1.1
	default:
		if hist.ActiveDays4w > 0 {
			avg = total / float64(hist.ActiveDays4w)
		}
	}

	target := int64(math.Ceil(avg))
	if floor := floors.Floor(metric); target < floor {
		target = floor
	}
	return target
}

// GenerateTemplates builds one challenge template per metric for a horizon,
// sized from the user's history.
func GenerateTemplates(ctype domain.ChallengeType, hist domain.HistoricalStats, floors TargetFloors) []domain.ChallengeTemplate {
	templates := make([]domain.ChallengeTemplate, 0, 4)
	for _, metric := range domain.Metrics() {
		target := RecommendTarget(ctype, metric, hist, floors)
		templates = append(templates, domain.ChallengeTemplate{
			Type:        ctype,
			Metric:      metric,
			TargetValue: target,
			RewardXP:    RewardXP(metric, target),
		})
	}
	return templates
}

// ─── Generation cadence gating ──────────────────────────────────────────────

// ShouldGenerateDaily reports whether a daily generation is due: true when
// no generation has ever run or the last one was before now's UTC date.
func ShouldGenerateDaily(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return DayOf(*last).Before(DayOf(now))
}

// ShouldGenerateWeekly reports whether a weekly generation is due: true when
// no generation has ever run or the last one was before the Monday that
// starts now's week.
func ShouldGenerateWeekly(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return last.UTC().Before(WeekStart(now))
}

// ─── Progress computation & application ─────────────────────────────────────

// ProgressForMetric computes the progress value for one metric. The baseline
// is the challenge's own start-stats snapshot when present, otherwise the
// previous-sync snapshot; a long-running challenge measures against its own
// start line, not whatever the last sync happened to be. The delta floors at
// zero.
func ProgressForMetric(metric domain.TargetMetric, prev, current domain.ActivityCounters, startStats *domain.ActivityCounters) int64 {
	baseline := prev
	if startStats != nil {
		baseline = *startStats
	}
	return Diff(current, baseline).Metric(metric)
}

// ApplyProgress is the challenge state-machine transition. The candidate
// value is clamped into [current, target] — progress never regresses and
// never overshoots. Reaching the target while the challenge is active
// transitions it to completed and emits a CompletionEvent; that signal is
// edge-triggered on the transition, so re-applying progress to a terminal
// challenge is a no-op and never re-pays the reward.
func ApplyProgress(c domain.Challenge, value int64, now time.Time) (domain.Challenge, domain.ChallengeUpdateResult, *domain.CompletionEvent) {
	result := domain.ChallengeUpdateResult{
		ChallengeID: c.ID,
		OldValue:    c.CurrentValue,
		NewValue:    c.CurrentValue,
		TargetValue: c.TargetValue,
		RewardXP:    c.RewardXP,
	}

	if c.Status != domain.ChallengeActive {
		return c, result, nil
	}

	if value < c.CurrentValue {
		value = c.CurrentValue // monotone: counters never move a bar backward
	}
	if value > c.TargetValue {
		value = c.TargetValue
	}
	c.CurrentValue = value
	result.NewValue = value

	var event *domain.CompletionEvent
	if value == c.TargetValue {
		c.Status = domain.ChallengeCompleted
		c.CompletedAt = now.UTC()
		result.JustCompleted = true
		event = &domain.CompletionEvent{
			ChallengeID: c.ID,
			RewardXP:    c.RewardXP,
			CompletedAt: c.CompletedAt,
		}
	}
	return c, result, event
}

// ExpireIfDue fails an active challenge whose window has closed. Terminal
// challenges pass through untouched.
func ExpireIfDue(c domain.Challenge, now time.Time) (domain.Challenge, bool) {
	if c.Status == domain.ChallengeActive && c.IsExpired(now) {
		c.Status = domain.ChallengeFailed
		return c, true
	}
	return c, false
}

// ─── Challenge service ──────────────────────────────────────────────────────

// ChallengeService owns the persisted challenge lifecycle: manual creation,
// cadence-gated generation, the expiry sweep, and deletion. Progress updates
// during sync run through the SyncService, which serializes per user.
type ChallengeService struct {
	db     *sqlite.DB
	floors TargetFloors
}

// NewChallengeService creates a challenge service.
func NewChallengeService(db *sqlite.DB, floors TargetFloors) *ChallengeService {
	return &ChallengeService{db: db, floors: floors}
}

// Create validates and persists a user-requested challenge. The start-stats
// baseline is captured now so progress is measured from the start line.
func (s *ChallengeService) Create(userID string, ctype domain.ChallengeType, metric domain.TargetMetric, target int64, startStats *domain.ActivityCounters, now time.Time) (domain.Challenge, error) {
	var zero domain.Challenge
	if !ctype.Valid() {
		return zero, domain.ErrInvalidChallengeType
	}
	if !metric.Valid() {
		return zero, domain.ErrInvalidTargetMetric
	}
	if target <= 0 {
		return zero, domain.ErrInvalidTargetValue
	}

	exists, err := s.db.HasActiveChallenge(userID, ctype, metric)
	if err != nil {
		return zero, fmt.Errorf("check active challenges: %w", err)
	}
	if exists {
		return zero, domain.ErrDuplicateChallenge
	}

	start, end := CalculatePeriod(ctype, now)
	ch := domain.Challenge{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        ctype,
		Metric:      metric,
		TargetValue: target,
		RewardXP:    RewardXP(metric, target),
		StartDate:   start,
		EndDate:     end,
		Status:      domain.ChallengeActive,
		StartStats:  startStats,
	}
	if err := s.db.InsertChallenge(ch); err != nil {
		return zero, fmt.Errorf("insert challenge: %w", err)
	}
	return ch, nil
}

// Generate creates the due template-driven challenges for one horizon,
// honoring the cadence gate (one generation per day / per ISO week) and
// skipping metrics that already have an active challenge of the same
// horizon. Returns the challenges created, possibly none.
func (s *ChallengeService) Generate(userID string, ctype domain.ChallengeType, hist domain.HistoricalStats, startStats *domain.ActivityCounters, now time.Time) ([]domain.Challenge, error) {
	last, err := s.db.LastGeneration(userID, ctype)
	if err != nil {
		return nil, fmt.Errorf("load last generation: %w", err)
	}

	due := false
	switch ctype {
	case domain.ChallengeDaily:
		due = ShouldGenerateDaily(last, now)
	case domain.ChallengeWeekly:
		due = ShouldGenerateWeekly(last, now)
	default:
		return nil, domain.ErrInvalidChallengeType
	}
	if !due {
		return nil, nil
	}

	var created []domain.Challenge
	for _, tmpl := range GenerateTemplates(ctype, hist, s.floors) {
		exists, err := s.db.HasActiveChallenge(userID, ctype, tmpl.Metric)
		if err != nil {
			return nil, fmt.Errorf("check active challenges: %w", err)
		}
		if exists {
			continue
		}

		start, end := CalculatePeriod(ctype, now)
		ch := domain.Challenge{
			ID:          uuid.New().String(),
			UserID:      userID,
			Type:        ctype,
			Metric:      tmpl.Metric,
			TargetValue: tmpl.TargetValue,
			RewardXP:    tmpl.RewardXP,
			StartDate:   start,
			EndDate:     end,
			Status:      domain.ChallengeActive,
			StartStats:  startStats,
		}
		if err := s.db.InsertChallenge(ch); err != nil {
			return nil, fmt.Errorf("insert challenge: %w", err)
		}
		created = append(created, ch)
		metrics.ChallengesGenerated.WithLabelValues(string(ctype)).Inc()
	}

	if err := s.db.SetLastGeneration(userID, ctype, now); err != nil {
		return nil, fmt.Errorf("record generation: %w", err)
	}
	return created, nil
}

// ExpireDue sweeps the user's active challenges, failing any whose window
// has passed. Returns the number failed. Callers run this before reading
// active challenges; the engine never expires autonomously.
func (s *ChallengeService) ExpireDue(userID string, now time.Time) (int, error) {
	active, err := s.db.ActiveChallenges(userID)
	if err != nil {
		return 0, fmt.Errorf("load active challenges: %w", err)
	}

	failed := 0
	for _, ch := range active {
		if expired, changed := ExpireIfDue(ch, now); changed {
			if err := s.db.UpdateChallenge(expired); err != nil {
				return failed, fmt.Errorf("fail challenge %s: %w", ch.ID, err)
			}
			failed++
		}
	}
	return failed, nil
}

// Active returns the user's active challenges after an expiry sweep.
func (s *ChallengeService) Active(userID string, now time.Time) ([]domain.Challenge, error) {
	if _, err := s.ExpireDue(userID, now); err != nil {
		return nil, err
	}
	return s.db.ActiveChallenges(userID)
}

// List returns all of the user's challenges, newest first.
func (s *ChallengeService) List(userID string) ([]domain.Challenge, error) {
	return s.db.ListChallenges(userID)
}

// Delete removes a challenge by id.
func (s *ChallengeService) Delete(id string) error {
	return s.db.DeleteChallenge(id)
}
