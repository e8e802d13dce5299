package domain

import "time"

// ─── Badge Types ────────────────────────────────────────────────────────────

// BadgeRarity ranks how hard a badge is to earn.
type BadgeRarity string

const (
	RarityBronze   BadgeRarity = "bronze"
	RaritySilver   BadgeRarity = "silver"
	RarityGold     BadgeRarity = "gold"
	RarityPlatinum BadgeRarity = "platinum"
)

// BadgeType groups badges by the activity they reward.
type BadgeType string

const (
	BadgeTypeCommits   BadgeType = "commits"
	BadgeTypeStreak    BadgeType = "streak"
	BadgeTypeReviews   BadgeType = "reviews"
	BadgeTypePrs       BadgeType = "prs"
	BadgeTypeIssues    BadgeType = "issues"
	BadgeTypeLanguages BadgeType = "languages"
	BadgeTypeLevel     BadgeType = "level"
	BadgeTypeStars     BadgeType = "stars"
)

// BadgeCondition is the closed set of unlock conditions. Each variant carries
// its own threshold fields; evaluation and progress scoring do an exhaustive
// type switch, so adding a variant is a single-point change.
type BadgeCondition interface {
	badgeCondition()
}

// CommitsCondition unlocks at a cumulative commit count.
type CommitsCondition struct {
	Threshold int64 `json:"threshold"`
}

// StreakCondition unlocks once a daily streak of the given length has ever
// been achieved — a broken streak still counts via the longest-streak
// high-water mark.
type StreakCondition struct {
	Days int `json:"days"`
}

// WeeklyStreakCondition unlocks at a count of consecutive active weeks.
type WeeklyStreakCondition struct {
	Weeks int `json:"weeks"`
}

// MonthlyStreakCondition unlocks at a count of consecutive active months.
type MonthlyStreakCondition struct {
	Months int `json:"months"`
}

// ReviewsCondition unlocks at a cumulative review count.
type ReviewsCondition struct {
	Threshold int64 `json:"threshold"`
}

// PrsMergedCondition unlocks at a cumulative merged-PR count.
type PrsMergedCondition struct {
	Threshold int64 `json:"threshold"`
}

// IssuesClosedCondition unlocks at a cumulative closed-issue count.
type IssuesClosedCondition struct {
	Threshold int64 `json:"threshold"`
}

// PrMergeRateCondition unlocks at a merge rate, gated on a minimum sample
// size so one merged PR does not read as a 100% rate.
type PrMergeRateCondition struct {
	MinRate float64 `json:"min_rate"` // 0.0–1.0
	MinPrs  int64   `json:"min_prs"`
}

// LanguagesCondition unlocks at a count of distinct languages used.
type LanguagesCondition struct {
	Count int `json:"count"`
}

// LevelCondition unlocks at a user level.
type LevelCondition struct {
	Threshold int `json:"threshold"`
}

// StarsReceivedCondition unlocks at a cumulative stars-received count.
type StarsReceivedCondition struct {
	Threshold int64 `json:"threshold"`
}

func (CommitsCondition) badgeCondition()       {}
func (StreakCondition) badgeCondition()        {}
func (WeeklyStreakCondition) badgeCondition()  {}
func (MonthlyStreakCondition) badgeCondition() {}
func (ReviewsCondition) badgeCondition()       {}
func (PrsMergedCondition) badgeCondition()     {}
func (IssuesClosedCondition) badgeCondition()  {}
func (PrMergeRateCondition) badgeCondition()   {}
func (LanguagesCondition) badgeCondition()     {}
func (LevelCondition) badgeCondition()         {}
func (StarsReceivedCondition) badgeCondition() {}

// BadgeDefinition is one catalog entry. The catalog is immutable at runtime
// and ids are durable keys — entries are never deleted or renumbered once
// shipped, because persisted earned rows reference them.
type BadgeDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        BadgeType      `json:"badge_type"`
	Rarity      BadgeRarity    `json:"rarity"`
	Icon        string         `json:"icon"`
	Condition   BadgeCondition `json:"-"`
}

// EarnedBadge records when a user earned a catalog badge.
// At most one row per (user, badge id).
type EarnedBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// BadgeEvalContext is the flattened numeric snapshot badge conditions are
// evaluated against. The sync layer derives it from UserStats plus computed
// metrics (merge rate inputs, language count).
type BadgeEvalContext struct {
	TotalCommits       int64 `json:"total_commits"`
	CurrentStreak      int   `json:"current_streak"`
	LongestStreak      int   `json:"longest_streak"`
	WeeklyStreak       int   `json:"weekly_streak"`
	MonthlyStreak      int   `json:"monthly_streak"`
	TotalReviews       int64 `json:"total_reviews"`
	TotalPrs           int64 `json:"total_prs"`
	TotalPrsMerged     int64 `json:"total_prs_merged"`
	TotalIssuesClosed  int64 `json:"total_issues_closed"`
	LanguagesCount     int   `json:"languages_count"`
	CurrentLevel       int   `json:"current_level"`
	TotalStarsReceived int64 `json:"total_stars_received"`
}

// BadgeProgress scores how close a user is to an unearned badge.
// Current and Target are in the condition's own unit; Percent is 0–100.
type BadgeProgress struct {
	Current int64 `json:"current"`
	Target  int64 `json:"target"`
	Percent int   `json:"percent"`
}

// BadgeEvalResult is one newly-satisfied catalog entry.
type BadgeEvalResult struct {
	Definition BadgeDefinition `json:"definition"`
}

// BadgeWithProgress joins a catalog entry with the user's standing on it.
// Earned entries carry EarnedAt; unearned entries carry Progress.
type BadgeWithProgress struct {
	Definition BadgeDefinition `json:"definition"`
	Earned     bool            `json:"earned"`
	EarnedAt   time.Time       `json:"earned_at,omitempty"`
	Progress   *BadgeProgress  `json:"progress,omitempty"`
}
