package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, XP, and streak",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := resolveUser(d)
	if err != nil {
		return err
	}

	stats, err := d.DB.GetUserStats(user)
	if err != nil {
		return err
	}
	if stats == nil {
		fmt.Printf("%s has not synced yet. Run 'gitquest sync' to get started.\n", user)
		return nil
	}

	info := progression.LevelInfoForXP(stats.TotalXP)
	count, err := d.DB.EarnedBadgeCount(user)
	if err != nil {
		return err
	}

	fmt.Printf("User:          %s\n", user)
	fmt.Printf("Level:         %d\n", info.Level)
	fmt.Printf("Total XP:      %d\n", info.TotalXP)
	fmt.Printf("Next level:    %s %.0f%% (%d XP to go)\n",
		renderBar(info.ProgressPct), info.ProgressPct, info.XPToNext)
	fmt.Printf("Streak:        %d days (longest %d)\n", stats.CurrentStreak, stats.LongestStreak)
	fmt.Printf("Badges:        %d\n", count)
	fmt.Printf("Commits:       %d\n", stats.TotalCommits)
	fmt.Printf("Pull requests: %d (%d merged)\n", stats.TotalPrs, stats.TotalPrsMerged)
	fmt.Printf("Reviews:       %d\n", stats.TotalReviews)
	fmt.Printf("Issues closed: %d\n", stats.TotalIssues)

	return nil
}
