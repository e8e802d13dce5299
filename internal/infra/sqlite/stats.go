package sqlite

import (
	"database/sql"
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
)

// ─── User Stats ─────────────────────────────────────────────────────────────

// GetUserStats retrieves a user's accumulator row. Returns nil when the user
// has never synced — "no stats yet" is not an error.
func (d *DB) GetUserStats(userID string) (*domain.UserStats, error) {
	row := d.db.QueryRow(
		`SELECT user_id, total_xp, current_level, current_streak, longest_streak,
		        last_activity_date, total_commits, total_prs, total_reviews,
		        total_issues, total_prs_merged, languages_count, stars_received
		 FROM user_stats WHERE user_id = ?`, userID,
	)

	var s domain.UserStats
	var lastActivity sql.NullInt64
	err := row.Scan(&s.UserID, &s.TotalXP, &s.CurrentLevel, &s.CurrentStreak,
		&s.LongestStreak, &lastActivity, &s.TotalCommits, &s.TotalPrs,
		&s.TotalReviews, &s.TotalIssues, &s.TotalPrsMerged,
		&s.LanguagesCount, &s.StarsReceived)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastActivity.Valid {
		s.LastActivityDate = time.Unix(lastActivity.Int64, 0).UTC()
	}
	return &s, nil
}

// UpsertUserStats writes the full accumulator row.
func (d *DB) UpsertUserStats(s domain.UserStats) error {
	_, err := d.db.Exec(
		`INSERT INTO user_stats (user_id, total_xp, current_level, current_streak,
		        longest_streak, last_activity_date, total_commits, total_prs,
		        total_reviews, total_issues, total_prs_merged, languages_count, stars_received)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			total_xp=excluded.total_xp,
			current_level=excluded.current_level,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_activity_date=excluded.last_activity_date,
			total_commits=excluded.total_commits,
			total_prs=excluded.total_prs,
			total_reviews=excluded.total_reviews,
			total_issues=excluded.total_issues,
			total_prs_merged=excluded.total_prs_merged,
			languages_count=excluded.languages_count,
			stars_received=excluded.stars_received`,
		s.UserID, s.TotalXP, s.CurrentLevel, s.CurrentStreak, s.LongestStreak,
		nullableUnix(s.LastActivityDate), s.TotalCommits, s.TotalPrs,
		s.TotalReviews, s.TotalIssues, s.TotalPrsMerged, s.LanguagesCount,
		s.StarsReceived,
	)
	return err
}

// ─── XP History ─────────────────────────────────────────────────────────────

// InsertXPEvent appends an XP-history row and returns its id.
func (d *DB) InsertXPEvent(ev domain.XPEvent) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO xp_history (user_id, amount, source, reference, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.UserID, ev.Amount, string(ev.Source), ev.Reference, ev.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListXPEvents returns a user's XP history, newest first.
func (d *DB) ListXPEvents(userID string, limit int) ([]domain.XPEvent, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, amount, source, reference, created_at
		 FROM xp_history WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.XPEvent
	for rows.Next() {
		var ev domain.XPEvent
		var createdAt int64
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Amount, &ev.Source,
			&ev.Reference, &createdAt); err != nil {
			return nil, err
		}
		ev.CreatedAt = time.Unix(createdAt, 0).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
