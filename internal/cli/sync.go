package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitquest-dev/gitquest/internal/daemon"
	"github.com/gitquest-dev/gitquest/internal/domain"
)

func init() {
	syncCmd.Flags().Int64Var(&syncCommits, "commits", 0, "Total commit count")
	syncCmd.Flags().Int64Var(&syncPrs, "prs", 0, "Total pull request count")
	syncCmd.Flags().Int64Var(&syncReviews, "reviews", 0, "Total review count")
	syncCmd.Flags().Int64Var(&syncIssues, "issues", 0, "Total closed issue count")
	syncCmd.Flags().Int64Var(&syncStars, "stars", 0, "Total stars received")
	syncCmd.Flags().Int64Var(&syncContributions, "contributions", 0, "Total contribution count")
	syncCmd.Flags().Int64Var(&syncPrsMerged, "prs-merged", 0, "Total merged PR count")
	syncCmd.Flags().IntVar(&syncLanguages, "languages", 0, "Distinct language count")
	rootCmd.AddCommand(syncCmd)
}

var (
	syncCommits       int64
	syncPrs           int64
	syncReviews       int64
	syncIssues        int64
	syncStars         int64
	syncContributions int64
	syncPrsMerged     int64
	syncLanguages     int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync activity counters and apply progression",
	Long: `Sync pushes the current cumulative activity counters into the engine.
The engine diffs them against the last snapshot, advances challenges,
awards XP, updates the streak, and evaluates badges.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := resolveUser(d)
	if err != nil {
		return err
	}

	activity := domain.SyncActivity{
		Counters: domain.ActivityCounters{
			Commits:       syncCommits,
			Prs:           syncPrs,
			Reviews:       syncReviews,
			Issues:        syncIssues,
			StarsReceived: syncStars,
			Contributions: syncContributions,
		},
		PrsMerged:      syncPrsMerged,
		LanguagesCount: syncLanguages,
	}

	result, err := d.Sync.Apply(user, activity, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Synced %s\n", user)
	if !result.Delta.IsZero() {
		fmt.Printf("  +%d commits, +%d PRs, +%d reviews, +%d issues\n",
			result.Delta.Commits, result.Delta.Prs, result.Delta.Reviews, result.Delta.Issues)
	}
	for _, ev := range result.Completed {
		fmt.Printf("  Challenge completed! +%d XP\n", ev.RewardXP)
	}
	for _, b := range result.NewBadges {
		fmt.Printf("  Badge earned: %s %s (%s)\n", b.Definition.Icon, b.Definition.Name, b.Definition.Rarity)
	}
	if result.XPAwarded > 0 {
		fmt.Printf("  Total XP awarded: %d\n", result.XPAwarded)
	}
	if result.LeveledUp {
		fmt.Printf("  Level up! You are now level %d\n", result.Stats.CurrentLevel)
	}
	return nil
}
