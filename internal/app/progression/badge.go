package progression

import (
	"fmt"
	"sort"
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// ─── Condition evaluation (pure) ────────────────────────────────────────────

// EvaluateCondition reports whether a badge condition is satisfied by the
// given context. Total over all condition variants — degenerate inputs (zero
// PR denominators) resolve to false, never to an error.
func EvaluateCondition(cond domain.BadgeCondition, ctx domain.BadgeEvalContext) bool {
	switch c := cond.(type) {
	case domain.CommitsCondition:
		return ctx.TotalCommits >= c.Threshold
	case domain.StreakCondition:
		// A broken streak still counts toward "ever achieved" badges.
		return maxInt(ctx.CurrentStreak, ctx.LongestStreak) >= c.Days
	case domain.WeeklyStreakCondition:
		return ctx.WeeklyStreak >= c.Weeks
	case domain.MonthlyStreakCondition:
		return ctx.MonthlyStreak >= c.Months
	case domain.ReviewsCondition:
		return ctx.TotalReviews >= c.Threshold
	case domain.PrsMergedCondition:
		return ctx.TotalPrsMerged >= c.Threshold
	case domain.IssuesClosedCondition:
		return ctx.TotalIssuesClosed >= c.Threshold
	case domain.PrMergeRateCondition:
		if ctx.TotalPrs < c.MinPrs || ctx.TotalPrs <= 0 {
			return false
		}
		rate := float64(ctx.TotalPrsMerged) / float64(ctx.TotalPrs)
		return rate >= c.MinRate
	case domain.LanguagesCondition:
		return ctx.LanguagesCount >= c.Count
	case domain.LevelCondition:
		return ctx.CurrentLevel >= c.Threshold
	case domain.StarsReceivedCondition:
		return ctx.TotalStarsReceived >= c.Threshold
	}
	return false
}

// ConditionProgress scores how far the context has come toward a condition.
// Percent is clamped to [0,100]; a zero target is defined as 100%.
//
// PrMergeRate is two-phase: while the PR sample is below MinPrs, progress
// tracks sample-size accumulation; once the gate is cleared it tracks the
// rate achieved toward MinRate. That keeps one merged PR from displaying as
// a 100% merge rate.
func ConditionProgress(cond domain.BadgeCondition, ctx domain.BadgeEvalContext) domain.BadgeProgress {
	switch c := cond.(type) {
	case domain.CommitsCondition:
		return scaled(ctx.TotalCommits, c.Threshold)
	case domain.StreakCondition:
		return scaled(int64(maxInt(ctx.CurrentStreak, ctx.LongestStreak)), int64(c.Days))
	case domain.WeeklyStreakCondition:
		return scaled(int64(ctx.WeeklyStreak), int64(c.Weeks))
	case domain.MonthlyStreakCondition:
		return scaled(int64(ctx.MonthlyStreak), int64(c.Months))
	case domain.ReviewsCondition:
		return scaled(ctx.TotalReviews, c.Threshold)
	case domain.PrsMergedCondition:
		return scaled(ctx.TotalPrsMerged, c.Threshold)
	case domain.IssuesClosedCondition:
		return scaled(ctx.TotalIssuesClosed, c.Threshold)
	case domain.PrMergeRateCondition:
		if ctx.TotalPrs < c.MinPrs {
			// Phase 1: accumulate sample size.
			return scaled(ctx.TotalPrs, c.MinPrs)
		}
		// Phase 2: rate achieved toward the required rate, as 0–100 ints.
		var rate float64
		if ctx.TotalPrs > 0 {
			rate = float64(ctx.TotalPrsMerged) / float64(ctx.TotalPrs)
		}
		return scaled(int64(rate*100), int64(c.MinRate*100))
	case domain.LanguagesCondition:
		return scaled(int64(ctx.LanguagesCount), int64(c.Count))
	case domain.LevelCondition:
		return scaled(int64(ctx.CurrentLevel), int64(c.Threshold))
	case domain.StarsReceivedCondition:
		return scaled(ctx.TotalStarsReceived, c.Threshold)
	}
	return domain.BadgeProgress{Percent: 0}
}

// scaled builds a BadgeProgress with percent = min(100, current/target*100).
func scaled(current, target int64) domain.BadgeProgress {
	p := domain.BadgeProgress{Current: current, Target: target}
	if target <= 0 {
		p.Percent = 100
		return p
	}
	pct := current * 100 / target
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	p.Percent = int(pct)
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ─── Catalog-wide evaluation (pure) ─────────────────────────────────────────

// EvaluateBadges returns every catalog entry whose condition is met and
// whose id is not already earned, in catalog order. Pure: the caller must
// persist the results before the next evaluation or it will see them again.
func EvaluateBadges(catalog []domain.BadgeDefinition, ctx domain.BadgeEvalContext, earnedIDs map[string]bool) []domain.BadgeEvalResult {
	var newly []domain.BadgeEvalResult
	for _, def := range catalog {
		if earnedIDs[def.ID] {
			continue
		}
		if EvaluateCondition(def.Condition, ctx) {
			newly = append(newly, domain.BadgeEvalResult{Definition: def})
		}
	}
	return newly
}

// BadgesWithProgress joins the full catalog against the user's earned set.
// Earned entries carry their earned-at time, unearned entries a computed
// progress. Output keeps catalog order.
func BadgesWithProgress(catalog []domain.BadgeDefinition, ctx domain.BadgeEvalContext, earned map[string]time.Time) []domain.BadgeWithProgress {
	out := make([]domain.BadgeWithProgress, 0, len(catalog))
	for _, def := range catalog {
		bwp := domain.BadgeWithProgress{Definition: def}
		if at, ok := earned[def.ID]; ok {
			bwp.Earned = true
			bwp.EarnedAt = at
		} else {
			p := ConditionProgress(def.Condition, ctx)
			bwp.Progress = &p
		}
		out = append(out, bwp)
	}
	return out
}

// NearCompletion filters unearned badges with threshold <= percent < 100,
// sorted descending by percent. The ordering is a contract: it drives the
// "almost there" surfaces, closest badge first.
func NearCompletion(catalog []domain.BadgeDefinition, ctx domain.BadgeEvalContext, earnedIDs map[string]bool, thresholdPct int) []domain.BadgeWithProgress {
	var near []domain.BadgeWithProgress
	for _, def := range catalog {
		if earnedIDs[def.ID] {
			continue
		}
		p := ConditionProgress(def.Condition, ctx)
		if p.Percent >= thresholdPct && p.Percent < 100 {
			prog := p
			near = append(near, domain.BadgeWithProgress{Definition: def, Progress: &prog})
		}
	}
	sort.SliceStable(near, func(i, j int) bool {
		return near[i].Progress.Percent > near[j].Progress.Percent
	})
	return near
}

// ─── Badge service ──────────────────────────────────────────────────────────

// BadgeService evaluates the catalog for a user and persists earned rows.
type BadgeService struct {
	db      *sqlite.DB
	catalog []domain.BadgeDefinition
}

// NewBadgeService creates a badge service with the full catalog.
func NewBadgeService(db *sqlite.DB) *BadgeService {
	return &BadgeService{db: db, catalog: Catalog()}
}

// Catalog returns the service's catalog (for display).
func (b *BadgeService) Catalog() []domain.BadgeDefinition {
	return b.catalog
}

// CheckAndAward evaluates all badges against the context and persists the
// newly earned ones. The earned_badges primary key makes the insert
// idempotent even if two evaluations race.
func (b *BadgeService) CheckAndAward(userID string, ctx domain.BadgeEvalContext, now time.Time) ([]domain.BadgeEvalResult, error) {
	earned, err := b.db.EarnedBadgeIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}

	newly := EvaluateBadges(b.catalog, ctx, earned)
	for _, res := range newly {
		if err := b.db.InsertEarnedBadge(domain.EarnedBadge{
			UserID:   userID,
			BadgeID:  res.Definition.ID,
			EarnedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("persist badge %s: %w", res.Definition.ID, err)
		}
	}
	return newly, nil
}

// WithProgress returns the full catalog join for a user.
func (b *BadgeService) WithProgress(userID string, ctx domain.BadgeEvalContext) ([]domain.BadgeWithProgress, error) {
	earned, err := b.db.EarnedBadges(userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	byID := make(map[string]time.Time, len(earned))
	for _, e := range earned {
		byID[e.BadgeID] = e.EarnedAt
	}
	return BadgesWithProgress(b.catalog, ctx, byID), nil
}

// Near returns unearned badges at or past the threshold percent.
func (b *BadgeService) Near(userID string, ctx domain.BadgeEvalContext, thresholdPct int) ([]domain.BadgeWithProgress, error) {
	earned, err := b.db.EarnedBadgeIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	return NearCompletion(b.catalog, ctx, earned, thresholdPct), nil
}
