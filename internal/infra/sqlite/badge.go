package sqlite

import (
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
)

// ─── Earned Badges ──────────────────────────────────────────────────────────

// InsertEarnedBadge records a badge as earned. Idempotent — the primary key
// on (user_id, badge_id) makes a duplicate insert a no-op.
func (d *DB) InsertEarnedBadge(b domain.EarnedBadge) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO earned_badges (user_id, badge_id, earned_at)
		 VALUES (?, ?, ?)`,
		b.UserID, b.BadgeID, b.EarnedAt.Unix(),
	)
	return err
}

// EarnedBadges returns all badges a user has earned, oldest first.
func (d *DB) EarnedBadges(userID string) ([]domain.EarnedBadge, error) {
	rows, err := d.db.Query(
		`SELECT user_id, badge_id, earned_at FROM earned_badges
		 WHERE user_id = ? ORDER BY earned_at ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.EarnedBadge
	for rows.Next() {
		var b domain.EarnedBadge
		var earnedAt int64
		if err := rows.Scan(&b.UserID, &b.BadgeID, &earnedAt); err != nil {
			return nil, err
		}
		b.EarnedAt = time.Unix(earnedAt, 0).UTC()
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// EarnedBadgeIDs returns the set of badge ids a user has earned.
func (d *DB) EarnedBadgeIDs(userID string) (map[string]bool, error) {
	rows, err := d.db.Query(
		`SELECT badge_id FROM earned_badges WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// EarnedBadgeCount returns how many badges a user has earned.
func (d *DB) EarnedBadgeCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM earned_badges WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}
