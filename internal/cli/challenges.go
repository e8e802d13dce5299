package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitquest-dev/gitquest/internal/daemon"
	"github.com/gitquest-dev/gitquest/internal/domain"
)

func init() {
	challengesCmd.AddCommand(challengesListCmd)
	challengesCmd.AddCommand(challengesNewCmd)
	challengesCmd.AddCommand(challengesGenerateCmd)
	challengesCmd.AddCommand(challengesRmCmd)
	challengesListCmd.Flags().BoolVar(&challengesListAll, "all", false, "Include completed and failed challenges")
	rootCmd.AddCommand(challengesCmd)
}

var challengesListAll bool

var challengesCmd = &cobra.Command{
	Use:     "challenges",
	Aliases: []string{"ch"},
	Short:   "Manage daily and weekly challenges",
}

var challengesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List challenges",
	RunE:  runChallengesList,
}

var challengesNewCmd = &cobra.Command{
	Use:   "new TYPE METRIC TARGET",
	Short: "Create a custom challenge (e.g. 'new daily commits 5')",
	Args:  cobra.ExactArgs(3),
	RunE:  runChallengesNew,
}

var challengesGenerateCmd = &cobra.Command{
	Use:   "generate TYPE",
	Short: "Generate challenges from your recent activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesGenerate,
}

var challengesRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesRm,
}

func runChallengesList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := resolveUser(d)
	if err != nil {
		return err
	}

	var challenges []domain.Challenge
	if challengesListAll {
		challenges, err = d.Challenges.List(user)
	} else {
		challenges, err = d.Challenges.Active(user, time.Now())
	}
	if err != nil {
		return err
	}

	if len(challenges) == 0 {
		fmt.Println("No challenges. Run 'gitquest challenges generate daily' to get some.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tMETRIC\tPROGRESS\tREWARD\tSTATUS\tENDS")
	for _, ch := range challenges {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %d/%d\t%d XP\t%s\t%s\n",
			shortID(ch.ID), ch.Type, ch.Metric,
			renderBar(ch.ProgressPct()), ch.CurrentValue, ch.TargetValue,
			ch.RewardXP, ch.Status, ch.EndDate.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func runChallengesNew(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid target %q: must be a number", args[2])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := resolveUser(d)
	if err != nil {
		return err
	}

	start, err := latestCounters(d, user)
	if err != nil {
		return err
	}

	ch, err := d.Challenges.Create(user, domain.ChallengeType(args[0]), domain.TargetMetric(args[1]), target, start, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Created %s challenge: %d %s for %d XP (ends %s)\n",
		ch.Type, ch.TargetValue, ch.Metric, ch.RewardXP, ch.EndDate.Format("2006-01-02 15:04"))
	return nil
}

func runChallengesGenerate(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := resolveUser(d)
	if err != nil {
		return err
	}

	now := time.Now()
	hist, err := d.Snapshots.History(user, now)
	if err != nil {
		return err
	}
	start, err := latestCounters(d, user)
	if err != nil {
		return err
	}

	created, err := d.Challenges.Generate(user, domain.ChallengeType(args[0]), hist, start, now)
	if err != nil {
		return err
	}

	if len(created) == 0 {
		fmt.Println("Nothing to generate — challenges for this period already exist.")
		return nil
	}
	for _, ch := range created {
		fmt.Printf("Generated %s challenge: %d %s for %d XP\n",
			ch.Type, ch.TargetValue, ch.Metric, ch.RewardXP)
	}
	return nil
}

func runChallengesRm(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Challenges.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

// latestCounters reads the newest snapshot as a challenge baseline, nil when
// the user has never synced.
func latestCounters(d *daemon.Daemon, user string) (*domain.ActivityCounters, error) {
	snap, err := d.DB.LatestSnapshot(user)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	counters := snap.Counters
	return &counters, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
