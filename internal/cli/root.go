// Package cli implements the gitquest command-line interface using Cobra.
// Each subcommand maps to one engine capability (sync, status, badges,
// challenges, serve).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gitquest",
	Short: "gitquest — Level up your development activity",
	Long: `gitquest turns development activity into a game.
Sync your commit, PR, review and issue counts to earn XP, climb levels,
collect badges, and complete daily and weekly challenges.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var flagUser string

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "User login (overrides config)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
