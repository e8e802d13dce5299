package progression_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/domain"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestLevel_XPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{-1, 0},
		{0, 0},
		{1, 0},
		{2, 50},
		{3, 200},
		{5, 800},
		{10, 4050},
		{100, 490050},
	}
	for _, tt := range tests {
		if got := progression.XPForLevel(tt.level); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevel_LevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{-10, 1},
		{0, 1},
		{49, 1},
		{50, 2},
		{199, 2},
		{200, 3},
		{449, 3},
		{450, 4},
		{4050, 10},
		{490050, 100},
		{1_000_000_000, 100}, // clamped at the cap
	}
	for _, tt := range tests {
		if got := progression.LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevel_RoundTrip(t *testing.T) {
	for level := 1; level <= progression.MaxLevel; level++ {
		xp := progression.XPForLevel(level)
		if got := progression.LevelForXP(xp); got != level {
			t.Errorf("LevelForXP(XPForLevel(%d)) = %d", level, got)
		}
		// One XP short of the threshold stays on the previous level.
		if level > 1 {
			if got := progression.LevelForXP(xp - 1); got != level-1 {
				t.Errorf("LevelForXP(%d) = %d, want %d", xp-1, got, level-1)
			}
		}
	}
}

func TestLevel_Monotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 500_000; xp += 777 {
		level := progression.LevelForXP(xp)
		if level < prev {
			t.Fatalf("level regressed at xp=%d: %d < %d", xp, level, prev)
		}
		prev = level
	}
}

func TestLevel_XPToNext(t *testing.T) {
	if got := progression.XPToNextLevel(0); got != 50 {
		t.Errorf("XPToNextLevel(0) = %d, want 50", got)
	}
	if got := progression.XPToNextLevel(50); got != 150 {
		t.Errorf("XPToNextLevel(50) = %d, want 150", got)
	}
	if got := progression.XPToNextLevel(490050); got != 0 {
		t.Errorf("XPToNextLevel at max level = %d, want 0", got)
	}
}

func TestLevel_ProgressToNext(t *testing.T) {
	// Level 2 band is [50, 200): 75 XP is 25/150 of the way.
	got := progression.ProgressToNextLevel(75)
	if got < 16.6 || got > 16.7 {
		t.Errorf("ProgressToNextLevel(75) = %f, want ~16.67", got)
	}
	if got := progression.ProgressToNextLevel(490050); got != 100.0 {
		t.Errorf("at max level = %f, want 100", got)
	}
	if got := progression.ProgressToNextLevel(0); got != 0.0 {
		t.Errorf("at zero = %f, want 0", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Snapshot & Diff Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestDiff_FloorsAtZero(t *testing.T) {
	current := domain.ActivityCounters{Commits: 10, Prs: 3, Reviews: 1}
	baseline := domain.ActivityCounters{Commits: 12, Prs: 1, Reviews: 1}

	d := progression.Diff(current, baseline)
	if d.Commits != 0 {
		t.Errorf("regressed commits should floor at 0, got %d", d.Commits)
	}
	if d.Prs != 2 {
		t.Errorf("prs delta = %d, want 2", d.Prs)
	}
	if d.Reviews != 0 {
		t.Errorf("unchanged reviews = %d, want 0", d.Reviews)
	}
}

func TestHistory_FromSnapshots(t *testing.T) {
	now := time.Date(2025, 7, 30, 14, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return progression.DayOf(now).AddDate(0, 0, offset)
	}

	snaps := []domain.StatsSnapshot{
		// Pre-window anchor: its own day is not counted, but it is the
		// baseline the first in-window delta is measured against.
		{Date: day(-30), Counters: domain.ActivityCounters{Commits: 100}},
		{Date: day(-27), Counters: domain.ActivityCounters{Commits: 110}},
		{Date: day(-26), Counters: domain.ActivityCounters{Commits: 110, Prs: 2}},
		{Date: day(-5), Counters: domain.ActivityCounters{Commits: 130, Prs: 2}},
	}

	h := progression.HistoryFromSnapshots(snaps, now)
	if h.Commits4w != 30 {
		t.Errorf("commits 4w = %d, want 30", h.Commits4w)
	}
	if h.Prs4w != 2 {
		t.Errorf("prs 4w = %d, want 2", h.Prs4w)
	}
	if h.ActiveDays4w != 3 {
		t.Errorf("active days = %d, want 3", h.ActiveDays4w)
	}
}

func TestHistory_Empty(t *testing.T) {
	h := progression.HistoryFromSnapshots(nil, time.Now())
	if h.Commits4w != 0 || h.ActiveDays4w != 0 {
		t.Errorf("empty history should be zero, got %+v", h)
	}
}

func TestSnapshots_PreviousSeesToday(t *testing.T) {
	db := testDB(t)
	svc := progression.NewSnapshotService(db)

	now := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
	yesterday := domain.ActivityCounters{Commits: 5}
	today := domain.ActivityCounters{Commits: 8}

	if err := svc.Save("alice", yesterday, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Save("alice", today, now); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second sync the same day must diff against today's row, or the
	// day's delta would be counted twice.
	prev, err := svc.Previous("alice", now.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	if prev == nil || prev.Counters.Commits != 8 {
		t.Fatalf("expected today's snapshot (8 commits), got %+v", prev)
	}
}

func TestSnapshots_PreviousNilWithoutHistory(t *testing.T) {
	db := testDB(t)
	svc := progression.NewSnapshotService(db)

	prev, err := svc.Previous("nobody", time.Now())
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	if prev != nil {
		t.Errorf("expected nil, got %+v", prev)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestBadge_Conditions(t *testing.T) {
	ctx := domain.BadgeEvalContext{
		TotalCommits:       100,
		CurrentStreak:      2,
		LongestStreak:      7,
		WeeklyStreak:       1,
		MonthlyStreak:      0,
		TotalReviews:       10,
		TotalPrs:           20,
		TotalPrsMerged:     18,
		TotalIssuesClosed:  5,
		LanguagesCount:     3,
		CurrentLevel:       5,
		TotalStarsReceived: 50,
	}

	tests := []struct {
		name string
		cond domain.BadgeCondition
		want bool
	}{
		{"commits met", domain.CommitsCondition{Threshold: 100}, true},
		{"commits unmet", domain.CommitsCondition{Threshold: 101}, false},
		{"streak via longest", domain.StreakCondition{Days: 7}, true},
		{"streak unmet", domain.StreakCondition{Days: 8}, false},
		{"weekly streak", domain.WeeklyStreakCondition{Weeks: 1}, true},
		{"monthly streak unmet", domain.MonthlyStreakCondition{Months: 1}, false},
		{"reviews", domain.ReviewsCondition{Threshold: 10}, true},
		{"prs merged", domain.PrsMergedCondition{Threshold: 18}, true},
		{"issues closed", domain.IssuesClosedCondition{Threshold: 6}, false},
		{"merge rate met", domain.PrMergeRateCondition{MinRate: 0.9, MinPrs: 10}, true},
		{"merge rate exact", domain.PrMergeRateCondition{MinRate: 0.8, MinPrs: 20}, true},
		{"merge rate short sample", domain.PrMergeRateCondition{MinRate: 0.5, MinPrs: 25}, false},
		{"languages", domain.LanguagesCondition{Count: 3}, true},
		{"level", domain.LevelCondition{Threshold: 5}, true},
		{"level unmet", domain.LevelCondition{Threshold: 6}, false},
		{"stars", domain.StarsReceivedCondition{Threshold: 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progression.EvaluateCondition(tt.cond, ctx); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBadge_MergeRateGate(t *testing.T) {
	cond := domain.PrMergeRateCondition{MinRate: 0.8, MinPrs: 10}

	// A perfect rate on a tiny sample must not unlock the badge.
	small := domain.BadgeEvalContext{TotalPrs: 5, TotalPrsMerged: 5}
	if progression.EvaluateCondition(cond, small) {
		t.Error("5/5 should not pass a MinPrs=10 gate")
	}

	large := domain.BadgeEvalContext{TotalPrs: 15, TotalPrsMerged: 14}
	if !progression.EvaluateCondition(cond, large) {
		t.Error("14/15 across 15 PRs should pass")
	}

	zero := domain.BadgeEvalContext{}
	if progression.EvaluateCondition(domain.PrMergeRateCondition{MinRate: 0.1, MinPrs: 0}, zero) {
		t.Error("zero PRs must never satisfy a rate condition")
	}
}

func TestBadge_MergeRateProgressTwoPhase(t *testing.T) {
	cond := domain.PrMergeRateCondition{MinRate: 0.9, MinPrs: 25}

	// Phase 1: below the sample gate, progress tracks sample accumulation.
	p := progression.ConditionProgress(cond, domain.BadgeEvalContext{TotalPrs: 10, TotalPrsMerged: 10})
	if p.Percent != 40 {
		t.Errorf("phase 1 percent = %d, want 40 (10/25 PRs)", p.Percent)
	}

	// Phase 2: gate cleared, progress tracks the rate achieved.
	p = progression.ConditionProgress(cond, domain.BadgeEvalContext{TotalPrs: 30, TotalPrsMerged: 24})
	if p.Percent != 88 {
		t.Errorf("phase 2 percent = %d, want 88 (rate 80/90)", p.Percent)
	}
}

func TestBadge_ProgressClamps(t *testing.T) {
	p := progression.ConditionProgress(domain.CommitsCondition{Threshold: 100}, domain.BadgeEvalContext{TotalCommits: 250})
	if p.Percent != 100 {
		t.Errorf("overshoot percent = %d, want 100", p.Percent)
	}
	p = progression.ConditionProgress(domain.CommitsCondition{Threshold: 0}, domain.BadgeEvalContext{})
	if p.Percent != 100 {
		t.Errorf("zero target percent = %d, want 100", p.Percent)
	}
}

func TestBadge_EvaluateSkipsEarned(t *testing.T) {
	ctx := domain.BadgeEvalContext{TotalCommits: 120}
	earned := map[string]bool{"first_commit": true}

	newly := progression.EvaluateBadges(progression.Catalog(), ctx, earned)
	for _, res := range newly {
		if res.Definition.ID == "first_commit" {
			t.Error("already-earned badge re-awarded")
		}
	}
	found := false
	for _, res := range newly {
		if res.Definition.ID == "commits_100" {
			found = true
		}
	}
	if !found {
		t.Error("commits_100 should be newly earned at 120 commits")
	}
}

func TestBadge_NearCompletionSorted(t *testing.T) {
	ctx := domain.BadgeEvalContext{TotalCommits: 90, TotalReviews: 8}
	near := progression.NearCompletion(progression.Catalog(), ctx, map[string]bool{"first_commit": true}, 75)

	if len(near) != 2 {
		t.Fatalf("expected 2 near badges, got %d", len(near))
	}
	if near[0].Definition.ID != "commits_100" || near[0].Progress.Percent != 90 {
		t.Errorf("first should be commits_100 at 90%%, got %s at %d%%",
			near[0].Definition.ID, near[0].Progress.Percent)
	}
	if near[1].Definition.ID != "reviews_10" || near[1].Progress.Percent != 80 {
		t.Errorf("second should be reviews_10 at 80%%, got %s at %d%%",
			near[1].Definition.ID, near[1].Progress.Percent)
	}
}

func TestBadge_NearCompletionExcludesComplete(t *testing.T) {
	// 100% but not yet persisted as earned: excluded — it belongs to the
	// award path, not the "almost there" surface.
	ctx := domain.BadgeEvalContext{TotalCommits: 100}
	near := progression.NearCompletion(progression.Catalog(), ctx, nil, 80)
	for _, b := range near {
		if b.Definition.ID == "commits_100" || b.Definition.ID == "first_commit" {
			t.Errorf("%s at 100%% should not appear in near list", b.Definition.ID)
		}
	}
}

func TestBadge_CatalogSane(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range progression.Catalog() {
		if def.ID == "" || def.Name == "" || def.Condition == nil {
			t.Errorf("incomplete catalog entry: %+v", def)
		}
		if seen[def.ID] {
			t.Errorf("duplicate badge id %q", def.ID)
		}
		seen[def.ID] = true
	}
}

func TestBadgeService_CheckAndAwardIdempotent(t *testing.T) {
	db := testDB(t)
	svc := progression.NewBadgeService(db)
	ctx := domain.BadgeEvalContext{TotalCommits: 150}
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	first, err := svc.CheckAndAward("alice", ctx, now)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(first) != 2 { // first_commit + commits_100
		t.Fatalf("expected 2 new badges, got %d", len(first))
	}

	second, err := svc.CheckAndAward("alice", ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("re-evaluation re-awarded %d badges", len(second))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenge Period & Reward Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestChallenge_PeriodDaily(t *testing.T) {
	now := time.Date(2025, 7, 1, 15, 30, 0, 0, time.UTC)
	start, end := progression.CalculatePeriod(domain.ChallengeDaily, now)
	if !start.Equal(now) {
		t.Errorf("start = %v, want creation instant", start)
	}
	if want := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want next UTC midnight", end)
	}

	// Created exactly at midnight: a full 24-hour window, never zero-width.
	midnight := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	_, end = progression.CalculatePeriod(domain.ChallengeDaily, midnight)
	if want := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("midnight-created end = %v, want %v", end, want)
	}
}

func TestChallenge_PeriodWeekly(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		end  time.Time
	}{
		{
			"wednesday runs to next monday",
			time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday rolls a full week",
			time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday rolls past the imminent monday",
			time.Date(2025, 7, 6, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, end := progression.CalculatePeriod(domain.ChallengeWeekly, tt.now)
			if !end.Equal(tt.end) {
				t.Errorf("end = %v, want %v", end, tt.end)
			}
		})
	}
}

func TestChallenge_PeriodUnknownType(t *testing.T) {
	now := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	_, end := progression.CalculatePeriod(domain.ChallengeType("monthly"), now)
	if want := now.AddDate(0, 0, 7); !end.Equal(want) {
		t.Errorf("unknown type end = %v, want flat 7 days", end)
	}
}

func TestChallenge_WeekStart(t *testing.T) {
	monday := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		now time.Time
	}{
		{time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC)}, // Monday
		{time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)},  // Wednesday
		{time.Date(2025, 7, 6, 8, 0, 0, 0, time.UTC)},  // Sunday
	}
	for _, tt := range tests {
		if got := progression.WeekStart(tt.now); !got.Equal(monday) {
			t.Errorf("WeekStart(%v) = %v, want %v", tt.now, got, monday)
		}
	}
}

func TestChallenge_RewardXP(t *testing.T) {
	tests := []struct {
		metric domain.TargetMetric
		target int64
		want   int64
	}{
		{domain.MetricCommits, 5, 50},
		{domain.MetricReviews, 3, 60},
		{domain.MetricIssues, 4, 100},
		{domain.MetricPrs, 2, 80},
		{domain.TargetMetric("stars"), 3, 30}, // unknown metric prices at commit rate
	}
	for _, tt := range tests {
		if got := progression.RewardXP(tt.metric, tt.target); got != tt.want {
			t.Errorf("RewardXP(%s, %d) = %d, want %d", tt.metric, tt.target, got, tt.want)
		}
	}
}

func TestChallenge_RecommendTarget(t *testing.T) {
	hist := domain.HistoricalStats{Commits4w: 40, ActiveDays4w: 20}
	floors := progression.DefaultTargetFloors()

	if got := progression.RecommendTarget(domain.ChallengeDaily, domain.MetricCommits, hist, floors); got != 2 {
		t.Errorf("daily target = %d, want 2 (40 commits / 20 active days)", got)
	}
	if got := progression.RecommendTarget(domain.ChallengeWeekly, domain.MetricCommits, hist, floors); got != 11 {
		t.Errorf("weekly target = %d, want 11 (40/4 * 1.1)", got)
	}
	// No history at all clamps up to the floor.
	if got := progression.RecommendTarget(domain.ChallengeDaily, domain.MetricPrs, domain.HistoricalStats{}, floors); got != 1 {
		t.Errorf("no-history target = %d, want floor 1", got)
	}
}

func TestChallenge_GenerateTemplates(t *testing.T) {
	hist := domain.HistoricalStats{Commits4w: 40, Prs4w: 8, ActiveDays4w: 20}
	templates := progression.GenerateTemplates(domain.ChallengeDaily, hist, progression.DefaultTargetFloors())

	if len(templates) != 4 {
		t.Fatalf("expected one template per metric, got %d", len(templates))
	}
	for _, tmpl := range templates {
		if tmpl.TargetValue < 1 {
			t.Errorf("%s target below floor: %d", tmpl.Metric, tmpl.TargetValue)
		}
		if tmpl.RewardXP != progression.RewardXP(tmpl.Metric, tmpl.TargetValue) {
			t.Errorf("%s reward %d inconsistent with target %d", tmpl.Metric, tmpl.RewardXP, tmpl.TargetValue)
		}
	}
}

func TestChallenge_GenerationCadence(t *testing.T) {
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC) // Wednesday

	if !progression.ShouldGenerateDaily(nil, now) {
		t.Error("first daily generation should be due")
	}
	sameDay := now.Add(-3 * time.Hour)
	if progression.ShouldGenerateDaily(&sameDay, now) {
		t.Error("second daily generation the same day should be gated")
	}
	yesterday := now.AddDate(0, 0, -1)
	if !progression.ShouldGenerateDaily(&yesterday, now) {
		t.Error("daily generation should be due the next day")
	}

	if !progression.ShouldGenerateWeekly(nil, now) {
		t.Error("first weekly generation should be due")
	}
	thisWeek := time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC) // Monday same week
	if progression.ShouldGenerateWeekly(&thisWeek, now) {
		t.Error("weekly generation twice in one week should be gated")
	}
	lastWeek := time.Date(2025, 6, 27, 8, 0, 0, 0, time.UTC)
	if !progression.ShouldGenerateWeekly(&lastWeek, now) {
		t.Error("weekly generation should be due in a new week")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenge State Machine Tests
// ═══════════════════════════════════════════════════════════════════════════

func activeChallenge(target int64) domain.Challenge {
	return domain.Challenge{
		ID:          "ch-1",
		UserID:      "alice",
		Type:        domain.ChallengeDaily,
		Metric:      domain.MetricCommits,
		TargetValue: target,
		RewardXP:    target * 10,
		StartDate:   time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		Status:      domain.ChallengeActive,
	}
}

func TestApplyProgress_ClampsOvershoot(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	ch, result, event := progression.ApplyProgress(activeChallenge(10), 15, now)

	if ch.CurrentValue != 10 {
		t.Errorf("value = %d, want clamped to target 10", ch.CurrentValue)
	}
	if ch.Status != domain.ChallengeCompleted {
		t.Errorf("status = %s, want completed", ch.Status)
	}
	if !result.JustCompleted {
		t.Error("expected JustCompleted")
	}
	if event == nil || event.RewardXP != 100 {
		t.Fatalf("expected completion event with 100 XP, got %+v", event)
	}
	if !ch.CompletedAt.Equal(now) {
		t.Errorf("completed at %v, want %v", ch.CompletedAt, now)
	}
}

func TestApplyProgress_NeverRegresses(t *testing.T) {
	ch := activeChallenge(10)
	ch.CurrentValue = 6

	updated, result, event := progression.ApplyProgress(ch, 4, time.Now())
	if updated.CurrentValue != 6 {
		t.Errorf("value regressed to %d", updated.CurrentValue)
	}
	if result.JustCompleted || event != nil {
		t.Error("no completion expected")
	}
}

func TestApplyProgress_TerminalNoOp(t *testing.T) {
	ch := activeChallenge(10)
	ch.Status = domain.ChallengeCompleted
	ch.CurrentValue = 10

	updated, result, event := progression.ApplyProgress(ch, 12, time.Now())
	if updated.Status != domain.ChallengeCompleted || updated.CurrentValue != 10 {
		t.Errorf("terminal challenge mutated: %+v", updated)
	}
	if result.JustCompleted || event != nil {
		t.Error("terminal re-application must not re-emit completion")
	}
}

func TestApplyProgress_CompletionEdgeTriggered(t *testing.T) {
	now := time.Now().UTC()
	ch, _, event := progression.ApplyProgress(activeChallenge(5), 5, now)
	if event == nil {
		t.Fatal("first application should complete")
	}

	// Applying the same progress again must not produce a second event —
	// this is what keeps the reward exactly-once for a serialized caller.
	_, result, event2 := progression.ApplyProgress(ch, 5, now.Add(time.Minute))
	if event2 != nil || result.JustCompleted {
		t.Error("second application re-emitted the completion event")
	}
}

func TestExpireIfDue(t *testing.T) {
	ch := activeChallenge(10)
	afterEnd := ch.EndDate.Add(time.Hour)

	expired, changed := progression.ExpireIfDue(ch, afterEnd)
	if !changed || expired.Status != domain.ChallengeFailed {
		t.Errorf("expected failed, got %s (changed=%v)", expired.Status, changed)
	}

	// Exactly at the boundary the window is still open.
	if _, changed := progression.ExpireIfDue(ch, ch.EndDate); changed {
		t.Error("challenge expired exactly at its end date")
	}

	done := ch
	done.Status = domain.ChallengeCompleted
	if _, changed := progression.ExpireIfDue(done, afterEnd); changed {
		t.Error("terminal challenge must not be expired")
	}
}

func TestProgressForMetric_Baselines(t *testing.T) {
	prev := domain.ActivityCounters{Commits: 100}
	current := domain.ActivityCounters{Commits: 107}

	if got := progression.ProgressForMetric(domain.MetricCommits, prev, current, nil); got != 7 {
		t.Errorf("prev-snapshot baseline delta = %d, want 7", got)
	}

	start := &domain.ActivityCounters{Commits: 95}
	if got := progression.ProgressForMetric(domain.MetricCommits, prev, current, start); got != 12 {
		t.Errorf("start-stats baseline delta = %d, want 12", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenge Service Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestChallengeService_CreateValidates(t *testing.T) {
	db := testDB(t)
	svc := progression.NewChallengeService(db, progression.DefaultTargetFloors())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ctype  domain.ChallengeType
		metric domain.TargetMetric
		target int64
		want   error
	}{
		{"bad type", "monthly", domain.MetricCommits, 5, domain.ErrInvalidChallengeType},
		{"bad metric", domain.ChallengeDaily, "stars", 5, domain.ErrInvalidTargetMetric},
		{"zero target", domain.ChallengeDaily, domain.MetricCommits, 0, domain.ErrInvalidTargetValue},
		{"negative target", domain.ChallengeDaily, domain.MetricCommits, -3, domain.ErrInvalidTargetValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create("alice", tt.ctype, tt.metric, tt.target, nil, now)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChallengeService_CreateAndDuplicate(t *testing.T) {
	db := testDB(t)
	svc := progression.NewChallengeService(db, progression.DefaultTargetFloors())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	start := &domain.ActivityCounters{Commits: 50}

	ch, err := svc.Create("alice", domain.ChallengeDaily, domain.MetricCommits, 5, start, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ch.ID == "" {
		t.Error("expected generated id")
	}
	if ch.RewardXP != 50 {
		t.Errorf("reward = %d, want 50", ch.RewardXP)
	}
	if ch.StartStats == nil || ch.StartStats.Commits != 50 {
		t.Errorf("start stats not captured: %+v", ch.StartStats)
	}

	_, err = svc.Create("alice", domain.ChallengeDaily, domain.MetricCommits, 9, start, now)
	if !errors.Is(err, domain.ErrDuplicateChallenge) {
		t.Errorf("duplicate err = %v, want ErrDuplicateChallenge", err)
	}

	// Same metric on the other horizon is allowed.
	if _, err := svc.Create("alice", domain.ChallengeWeekly, domain.MetricCommits, 20, start, now); err != nil {
		t.Errorf("weekly create: %v", err)
	}

	// Round-trip through the store, baseline blob included.
	got, err := db.GetChallenge(ch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.StartStats == nil || got.StartStats.Commits != 50 {
		t.Errorf("persisted challenge lost its baseline: %+v", got)
	}
}

func TestChallengeService_GenerateGated(t *testing.T) {
	db := testDB(t)
	svc := progression.NewChallengeService(db, progression.DefaultTargetFloors())
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	hist := domain.HistoricalStats{Commits4w: 40, ActiveDays4w: 20}

	created, err := svc.Generate("alice", domain.ChallengeDaily, hist, nil, now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("expected 4 generated challenges, got %d", len(created))
	}

	// Same day: cadence-gated, nothing new.
	again, err := svc.Generate("alice", domain.ChallengeDaily, hist, nil, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("same-day regeneration created %d challenges", len(again))
	}

	// Next day, after the expiry sweep clears yesterday's windows.
	tomorrow := now.AddDate(0, 0, 1)
	if _, err := svc.ExpireDue("alice", tomorrow); err != nil {
		t.Fatalf("expire: %v", err)
	}
	fresh, err := svc.Generate("alice", domain.ChallengeDaily, hist, nil, tomorrow)
	if err != nil {
		t.Fatalf("next-day generate: %v", err)
	}
	if len(fresh) != 4 {
		t.Errorf("next-day generation created %d, want 4", len(fresh))
	}
}

func TestChallengeService_GenerateSkipsActiveMetric(t *testing.T) {
	db := testDB(t)
	svc := progression.NewChallengeService(db, progression.DefaultTargetFloors())
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)

	if _, err := svc.Create("alice", domain.ChallengeDaily, domain.MetricCommits, 5, nil, now); err != nil {
		t.Fatalf("create: %v", err)
	}

	created, err := svc.Generate("alice", domain.ChallengeDaily, domain.HistoricalStats{}, nil, now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 (commits already active), got %d", len(created))
	}
	for _, ch := range created {
		if ch.Metric == domain.MetricCommits {
			t.Error("generated a second active commits challenge")
		}
	}
}

func TestChallengeService_ExpireDueSweep(t *testing.T) {
	db := testDB(t)
	svc := progression.NewChallengeService(db, progression.DefaultTargetFloors())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	if _, err := svc.Create("alice", domain.ChallengeDaily, domain.MetricCommits, 5, nil, now); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create("alice", domain.ChallengeWeekly, domain.MetricPrs, 3, nil, now); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Past the daily window, inside the weekly one.
	later := time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)
	failed, err := svc.ExpireDue("alice", later)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	active, err := svc.Active("alice", later)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 || active[0].Metric != domain.MetricPrs {
		t.Errorf("expected only the weekly prs challenge active, got %+v", active)
	}
}

func TestChallengeService_DeleteMissing(t *testing.T) {
	db := testDB(t)
	svc := progression.NewChallengeService(db, progression.DefaultTargetFloors())

	if err := svc.Delete("no-such-id"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("err = %v, want ErrChallengeNotFound", err)
	}
}
