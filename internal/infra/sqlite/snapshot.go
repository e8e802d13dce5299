package sqlite

import (
	"database/sql"
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
)

// ─── Stats Snapshots ────────────────────────────────────────────────────────

// UpsertSnapshot writes the snapshot row for (user, date), overwriting an
// existing row for the same day. Earlier days are never touched.
func (d *DB) UpsertSnapshot(s domain.StatsSnapshot) error {
	_, err := d.db.Exec(
		`INSERT INTO stats_snapshots (user_id, date, commits, prs, reviews, issues, stars_received, contributions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET
			commits=excluded.commits,
			prs=excluded.prs,
			reviews=excluded.reviews,
			issues=excluded.issues,
			stars_received=excluded.stars_received,
			contributions=excluded.contributions`,
		s.UserID, s.Date.Unix(), s.Counters.Commits, s.Counters.Prs,
		s.Counters.Reviews, s.Counters.Issues, s.Counters.StarsReceived,
		s.Counters.Contributions,
	)
	return err
}

// PreviousSnapshot returns the most recent snapshot strictly before the
// given date, or nil when there is no history yet.
func (d *DB) PreviousSnapshot(userID string, before time.Time) (*domain.StatsSnapshot, error) {
	row := d.db.QueryRow(
		`SELECT user_id, date, commits, prs, reviews, issues, stars_received, contributions
		 FROM stats_snapshots WHERE user_id = ? AND date < ?
		 ORDER BY date DESC LIMIT 1`,
		userID, before.Unix(),
	)
	return scanSnapshot(row)
}

// LatestSnapshot returns the newest snapshot for a user, or nil.
func (d *DB) LatestSnapshot(userID string) (*domain.StatsSnapshot, error) {
	row := d.db.QueryRow(
		`SELECT user_id, date, commits, prs, reviews, issues, stars_received, contributions
		 FROM stats_snapshots WHERE user_id = ?
		 ORDER BY date DESC LIMIT 1`, userID,
	)
	return scanSnapshot(row)
}

// SnapshotsSince returns all snapshots on or after from, oldest first.
func (d *DB) SnapshotsSince(userID string, from time.Time) ([]domain.StatsSnapshot, error) {
	rows, err := d.db.Query(
		`SELECT user_id, date, commits, prs, reviews, issues, stars_received, contributions
		 FROM stats_snapshots WHERE user_id = ? AND date >= ?
		 ORDER BY date ASC`,
		userID, from.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []domain.StatsSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *s)
	}
	return snaps, rows.Err()
}

func scanSnapshot(s scanner) (*domain.StatsSnapshot, error) {
	var snap domain.StatsSnapshot
	var date int64
	err := s.Scan(&snap.UserID, &date, &snap.Counters.Commits,
		&snap.Counters.Prs, &snap.Counters.Reviews, &snap.Counters.Issues,
		&snap.Counters.StarsReceived, &snap.Counters.Contributions)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap.Date = time.Unix(date, 0).UTC()
	return &snap, nil
}
