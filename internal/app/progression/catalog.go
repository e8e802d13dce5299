package progression

import "github.com/gitquest-dev/gitquest/internal/domain"

// ─── Badge Catalog ──────────────────────────────────────────────────────────
// The catalog is read-only static configuration, loaded once and never
// mutated. Entry ids are durable keys: persisted earned rows reference them,
// so entries are never deleted or renumbered once shipped. Order here is the
// display order everywhere — evaluation results keep catalog order.

// Catalog returns the full badge catalog.
func Catalog() []domain.BadgeDefinition {
	return []domain.BadgeDefinition{
		// ── Commits ────────────────────────────────────────────────────
		{
			ID: "first_commit", Name: "First Steps", Type: domain.BadgeTypeCommits,
			Rarity: domain.RarityBronze, Icon: "🌱",
			Description: "Make your first commit",
			Condition:   domain.CommitsCondition{Threshold: 1},
		},
		{
			ID: "commits_100", Name: "Century", Type: domain.BadgeTypeCommits,
			Rarity: domain.RarityBronze, Icon: "💯",
			Description: "Reach 100 commits",
			Condition:   domain.CommitsCondition{Threshold: 100},
		},
		{
			ID: "commits_500", Name: "Committed", Type: domain.BadgeTypeCommits,
			Rarity: domain.RaritySilver, Icon: "📦",
			Description: "Reach 500 commits",
			Condition:   domain.CommitsCondition{Threshold: 500},
		},
		{
			ID: "commits_1000", Name: "Kilocommit", Type: domain.BadgeTypeCommits,
			Rarity: domain.RarityGold, Icon: "🚀",
			Description: "Reach 1,000 commits",
			Condition:   domain.CommitsCondition{Threshold: 1000},
		},
		{
			ID: "commits_5000", Name: "Commit Machine", Type: domain.BadgeTypeCommits,
			Rarity: domain.RarityPlatinum, Icon: "🤖",
			Description: "Reach 5,000 commits",
			Condition:   domain.CommitsCondition{Threshold: 5000},
		},

		// ── Daily streaks ──────────────────────────────────────────────
		{
			ID: "streak_3", Name: "Warming Up", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityBronze, Icon: "✨",
			Description: "Stay active 3 days in a row",
			Condition:   domain.StreakCondition{Days: 3},
		},
		{
			ID: "streak_7", Name: "Week Warrior", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityBronze, Icon: "🔥",
			Description: "Stay active 7 days in a row",
			Condition:   domain.StreakCondition{Days: 7},
		},
		{
			ID: "streak_30", Name: "Monthly Machine", Type: domain.BadgeTypeStreak,
			Rarity: domain.RaritySilver, Icon: "💪",
			Description: "Stay active 30 days in a row",
			Condition:   domain.StreakCondition{Days: 30},
		},
		{
			ID: "streak_100", Name: "Centurion", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityGold, Icon: "🏛️",
			Description: "Stay active 100 days in a row",
			Condition:   domain.StreakCondition{Days: 100},
		},
		{
			ID: "streak_365", Name: "Year of Code", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityPlatinum, Icon: "⭐",
			Description: "Stay active 365 days in a row",
			Condition:   domain.StreakCondition{Days: 365},
		},
		{
			ID: "weekly_streak_4", Name: "Four-Week Form", Type: domain.BadgeTypeStreak,
			Rarity: domain.RaritySilver, Icon: "📅",
			Description: "Stay active 4 weeks in a row",
			Condition:   domain.WeeklyStreakCondition{Weeks: 4},
		},
		{
			ID: "weekly_streak_12", Name: "Quarter Grind", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityGold, Icon: "🗓️",
			Description: "Stay active 12 weeks in a row",
			Condition:   domain.WeeklyStreakCondition{Weeks: 12},
		},
		{
			ID: "monthly_streak_6", Name: "Half-Year Habit", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityGold, Icon: "🌗",
			Description: "Stay active 6 months in a row",
			Condition:   domain.MonthlyStreakCondition{Months: 6},
		},
		{
			ID: "monthly_streak_12", Name: "Perennial", Type: domain.BadgeTypeStreak,
			Rarity: domain.RarityPlatinum, Icon: "🌲",
			Description: "Stay active 12 months in a row",
			Condition:   domain.MonthlyStreakCondition{Months: 12},
		},

		// ── Reviews ────────────────────────────────────────────────────
		{
			ID: "reviews_10", Name: "Second Pair of Eyes", Type: domain.BadgeTypeReviews,
			Rarity: domain.RarityBronze, Icon: "👀",
			Description: "Review 10 pull requests",
			Condition:   domain.ReviewsCondition{Threshold: 10},
		},
		{
			ID: "reviews_50", Name: "Gatekeeper", Type: domain.BadgeTypeReviews,
			Rarity: domain.RaritySilver, Icon: "🛡️",
			Description: "Review 50 pull requests",
			Condition:   domain.ReviewsCondition{Threshold: 50},
		},
		{
			ID: "reviews_250", Name: "Code Guardian", Type: domain.BadgeTypeReviews,
			Rarity: domain.RarityGold, Icon: "⚔️",
			Description: "Review 250 pull requests",
			Condition:   domain.ReviewsCondition{Threshold: 250},
		},

		// ── Pull requests ──────────────────────────────────────────────
		{
			ID: "prs_merged_10", Name: "Merged In", Type: domain.BadgeTypePrs,
			Rarity: domain.RarityBronze, Icon: "🔀",
			Description: "Get 10 pull requests merged",
			Condition:   domain.PrsMergedCondition{Threshold: 10},
		},
		{
			ID: "prs_merged_100", Name: "Shipping Regular", Type: domain.BadgeTypePrs,
			Rarity: domain.RaritySilver, Icon: "🚢",
			Description: "Get 100 pull requests merged",
			Condition:   domain.PrsMergedCondition{Threshold: 100},
		},
		{
			ID: "prs_merged_500", Name: "Merge Lord", Type: domain.BadgeTypePrs,
			Rarity: domain.RarityGold, Icon: "👑",
			Description: "Get 500 pull requests merged",
			Condition:   domain.PrsMergedCondition{Threshold: 500},
		},
		{
			ID: "merge_rate_80", Name: "Clean Shipper", Type: domain.BadgeTypePrs,
			Rarity: domain.RaritySilver, Icon: "🧹",
			Description: "Keep an 80% merge rate across 10+ PRs",
			Condition:   domain.PrMergeRateCondition{MinRate: 0.8, MinPrs: 10},
		},
		{
			ID: "merge_rate_90", Name: "Surgical", Type: domain.BadgeTypePrs,
			Rarity: domain.RarityGold, Icon: "🔬",
			Description: "Keep a 90% merge rate across 25+ PRs",
			Condition:   domain.PrMergeRateCondition{MinRate: 0.9, MinPrs: 25},
		},

		// ── Issues ─────────────────────────────────────────────────────
		{
			ID: "issues_closed_10", Name: "Bug Squasher", Type: domain.BadgeTypeIssues,
			Rarity: domain.RarityBronze, Icon: "🐛",
			Description: "Close 10 issues",
			Condition:   domain.IssuesClosedCondition{Threshold: 10},
		},
		{
			ID: "issues_closed_50", Name: "Exterminator", Type: domain.BadgeTypeIssues,
			Rarity: domain.RaritySilver, Icon: "🪲",
			Description: "Close 50 issues",
			Condition:   domain.IssuesClosedCondition{Threshold: 50},
		},
		{
			ID: "issues_closed_200", Name: "Zero Inbox", Type: domain.BadgeTypeIssues,
			Rarity: domain.RarityGold, Icon: "📭",
			Description: "Close 200 issues",
			Condition:   domain.IssuesClosedCondition{Threshold: 200},
		},

		// ── Languages ──────────────────────────────────────────────────
		{
			ID: "languages_3", Name: "Trilingual", Type: domain.BadgeTypeLanguages,
			Rarity: domain.RarityBronze, Icon: "🗣️",
			Description: "Code in 3 languages",
			Condition:   domain.LanguagesCondition{Count: 3},
		},
		{
			ID: "languages_5", Name: "Polyglot", Type: domain.BadgeTypeLanguages,
			Rarity: domain.RaritySilver, Icon: "🌍",
			Description: "Code in 5 languages",
			Condition:   domain.LanguagesCondition{Count: 5},
		},
		{
			ID: "languages_10", Name: "Tower of Babel", Type: domain.BadgeTypeLanguages,
			Rarity: domain.RarityGold, Icon: "🗼",
			Description: "Code in 10 languages",
			Condition:   domain.LanguagesCondition{Count: 10},
		},

		// ── Levels ─────────────────────────────────────────────────────
		{
			ID: "level_5", Name: "Getting Serious", Type: domain.BadgeTypeLevel,
			Rarity: domain.RarityBronze, Icon: "📈",
			Description: "Reach level 5",
			Condition:   domain.LevelCondition{Threshold: 5},
		},
		{
			ID: "level_10", Name: "Rising Star", Type: domain.BadgeTypeLevel,
			Rarity: domain.RaritySilver, Icon: "🌅",
			Description: "Reach level 10",
			Condition:   domain.LevelCondition{Threshold: 10},
		},
		{
			ID: "level_25", Name: "Veteran", Type: domain.BadgeTypeLevel,
			Rarity: domain.RaritySilver, Icon: "🎖️",
			Description: "Reach level 25",
			Condition:   domain.LevelCondition{Threshold: 25},
		},
		{
			ID: "level_50", Name: "Grandmaster", Type: domain.BadgeTypeLevel,
			Rarity: domain.RarityGold, Icon: "🏆",
			Description: "Reach level 50",
			Condition:   domain.LevelCondition{Threshold: 50},
		},
		{
			ID: "level_100", Name: "Ascended", Type: domain.BadgeTypeLevel,
			Rarity: domain.RarityPlatinum, Icon: "🌌",
			Description: "Reach level 100",
			Condition:   domain.LevelCondition{Threshold: 100},
		},

		// ── Stars ──────────────────────────────────────────────────────
		{
			ID: "stars_10", Name: "Noticed", Type: domain.BadgeTypeStars,
			Rarity: domain.RarityBronze, Icon: "⭐",
			Description: "Receive 10 stars on your repositories",
			Condition:   domain.StarsReceivedCondition{Threshold: 10},
		},
		{
			ID: "stars_100", Name: "Community Favorite", Type: domain.BadgeTypeStars,
			Rarity: domain.RaritySilver, Icon: "🌟",
			Description: "Receive 100 stars on your repositories",
			Condition:   domain.StarsReceivedCondition{Threshold: 100},
		},
		{
			ID: "stars_1000", Name: "Constellation", Type: domain.BadgeTypeStars,
			Rarity: domain.RarityPlatinum, Icon: "💫",
			Description: "Receive 1,000 stars on your repositories",
			Condition:   domain.StarsReceivedCondition{Threshold: 1000},
		},
	}
}
