// Package sqlite provides SQLite-based persistent storage for gitquest.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/gitquest.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "gitquest.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Per-user accumulator: XP, level, streaks, cumulative totals.
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id            TEXT PRIMARY KEY,
			total_xp           INTEGER NOT NULL DEFAULT 0,
			current_level      INTEGER NOT NULL DEFAULT 1,
			current_streak     INTEGER NOT NULL DEFAULT 0,
			longest_streak     INTEGER NOT NULL DEFAULT 0,
			last_activity_date INTEGER,
			total_commits      INTEGER NOT NULL DEFAULT 0,
			total_prs          INTEGER NOT NULL DEFAULT 0,
			total_reviews      INTEGER NOT NULL DEFAULT 0,
			total_issues       INTEGER NOT NULL DEFAULT 0,
			total_prs_merged   INTEGER NOT NULL DEFAULT 0,
			languages_count    INTEGER NOT NULL DEFAULT 0,
			stars_received     INTEGER NOT NULL DEFAULT 0
		)`,

		// Dated cumulative snapshots — the diffing anchors. One row per
		// (user, UTC day); only today's row is ever overwritten.
		`CREATE TABLE IF NOT EXISTS stats_snapshots (
			user_id        TEXT NOT NULL,
			date           INTEGER NOT NULL,
			commits        INTEGER NOT NULL DEFAULT 0,
			prs            INTEGER NOT NULL DEFAULT 0,
			reviews        INTEGER NOT NULL DEFAULT 0,
			issues         INTEGER NOT NULL DEFAULT 0,
			stars_received INTEGER NOT NULL DEFAULT 0,
			contributions  INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_user_date ON stats_snapshots(user_id, date)`,

		// Time-boxed challenges with their start-stats baseline blob.
		`CREATE TABLE IF NOT EXISTS challenges (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			type          TEXT NOT NULL,
			metric        TEXT NOT NULL,
			target_value  INTEGER NOT NULL,
			current_value INTEGER NOT NULL DEFAULT 0,
			reward_xp     INTEGER NOT NULL,
			start_date    INTEGER NOT NULL,
			end_date      INTEGER NOT NULL,
			status        TEXT NOT NULL DEFAULT 'active',
			completed_at  INTEGER,
			start_stats   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_user_status ON challenges(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_end ON challenges(end_date)`,

		// Earned badges. The primary key is the uniqueness guarantee:
		// at most one row per (user, badge).
		`CREATE TABLE IF NOT EXISTS earned_badges (
			user_id   TEXT NOT NULL,
			badge_id  TEXT NOT NULL,
			earned_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, badge_id)
		)`,

		// XP history — one row per award.
		`CREATE TABLE IF NOT EXISTS xp_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			source     TEXT NOT NULL,
			reference  TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_user_created ON xp_history(user_id, created_at)`,

		// Key-value store for engine bookkeeping (last generation dates).
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Meta Key-Value ─────────────────────────────────────────────────────────

// SetMeta stores a bookkeeping key-value pair.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetMeta retrieves a bookkeeping value by key. Returns "" if not set.
func (d *DB) GetMeta(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
