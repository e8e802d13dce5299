package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/daemon"
)

func init() {
	badgesCmd.Flags().BoolVar(&badgesNear, "near", false, "Only show badges close to unlocking")
	badgesCmd.Flags().BoolVar(&badgesAll, "all", false, "Include unearned badges")
	rootCmd.AddCommand(badgesCmd)
}

var (
	badgesNear bool
	badgesAll  bool
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List earned badges and progress",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
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
	ctx := progression.EvalContext(*stats)

	if badgesNear {
		near, err := d.Badges.Near(user, ctx, d.Config.Badges.NearCompletionPct)
		if err != nil {
			return err
		}
		if len(near) == 0 {
			fmt.Println("No badges close to unlocking.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BADGE\tRARITY\tPROGRESS")
		for _, b := range near {
			fmt.Fprintf(w, "%s %s\t%s\t%s %d%% (%d/%d)\n",
				b.Definition.Icon, b.Definition.Name, b.Definition.Rarity,
				renderBar(float64(b.Progress.Percent)), b.Progress.Percent,
				b.Progress.Current, b.Progress.Target)
		}
		return w.Flush()
	}

	badges, err := d.Badges.WithProgress(user, ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BADGE\tRARITY\tSTATUS")
	shown := 0
	for _, b := range badges {
		if !b.Earned && !badgesAll {
			continue
		}
		status := "locked"
		if b.Earned {
			status = "earned " + b.EarnedAt.Format("2006-01-02")
		} else if b.Progress != nil {
			status = fmt.Sprintf("%d%% (%d/%d)", b.Progress.Percent, b.Progress.Current, b.Progress.Target)
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", b.Definition.Icon, b.Definition.Name, b.Definition.Rarity, status)
		shown++
	}
	if shown == 0 {
		fmt.Println("No badges earned yet. Run 'gitquest badges --all' to see what's out there.")
		return nil
	}
	return w.Flush()
}
