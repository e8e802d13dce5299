// Package daemon manages the gitquest runtime lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all gitquest configuration.
type Config struct {
	User       UserConfig       `toml:"user"`
	API        APIConfig        `toml:"api"`
	Badges     BadgesConfig     `toml:"badges"`
	Challenges ChallengesConfig `toml:"challenges"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

// UserConfig identifies the default user for CLI commands.
type UserConfig struct {
	Login string `toml:"login"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BadgesConfig tunes badge surfacing.
type BadgesConfig struct {
	// NearCompletionPct is the minimum progress percent for a badge to
	// show up on the "almost there" surface.
	NearCompletionPct int `toml:"near_completion_pct"`
}

// ChallengesConfig tunes challenge generation. The minimums floor the
// recommended targets so low-activity users never get a target of zero.
type ChallengesConfig struct {
	MinCommitsTarget int64 `toml:"min_commits_target"`
	MinPrsTarget     int64 `toml:"min_prs_target"`
	MinReviewsTarget int64 `toml:"min_reviews_target"`
	MinIssuesTarget  int64 `toml:"min_issues_target"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8474,
		},
		Badges: BadgesConfig{
			NearCompletionPct: 80,
		},
		Challenges: ChallengesConfig{
			MinCommitsTarget: 1,
			MinPrsTarget:     1,
			MinReviewsTarget: 1,
			MinIssuesTarget:  1,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.gitquest/config.toml, falling back to
// defaults when the file does not exist yet.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(gitquestHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.gitquest/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(gitquestHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// gitquestHome returns the gitquest data directory.
func gitquestHome() string {
	if env := os.Getenv("GITQUEST_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gitquest")
}

// Home is exported for use by other packages.
func Home() string {
	return gitquestHome()
}
