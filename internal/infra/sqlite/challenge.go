package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gitquest-dev/gitquest/internal/domain"
)

// ─── Challenges ─────────────────────────────────────────────────────────────

// InsertChallenge creates a new challenge row.
func (d *DB) InsertChallenge(c domain.Challenge) error {
	startStats, err := marshalStartStats(c.StartStats)
	if err != nil {
		return fmt.Errorf("encode start stats: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO challenges (id, user_id, type, metric, target_value, current_value,
		        reward_xp, start_date, end_date, status, completed_at, start_stats)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, string(c.Type), string(c.Metric), c.TargetValue,
		c.CurrentValue, c.RewardXP, c.StartDate.Unix(), c.EndDate.Unix(),
		string(c.Status), nullableUnix(c.CompletedAt), startStats,
	)
	return err
}

// UpdateChallenge writes back a challenge's mutable fields.
func (d *DB) UpdateChallenge(c domain.Challenge) error {
	result, err := d.db.Exec(
		`UPDATE challenges SET current_value = ?, status = ?, completed_at = ?
		 WHERE id = ?`,
		c.CurrentValue, string(c.Status), nullableUnix(c.CompletedAt), c.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

// GetChallenge retrieves a challenge by id, or nil when absent.
func (d *DB) GetChallenge(id string) (*domain.Challenge, error) {
	row := d.db.QueryRow(challengeSelect+` WHERE id = ?`, id)
	return scanChallenge(row)
}

// ActiveChallenges returns a user's active challenges, soonest-ending first.
func (d *DB) ActiveChallenges(userID string) ([]domain.Challenge, error) {
	rows, err := d.db.Query(
		challengeSelect+` WHERE user_id = ? AND status = 'active' ORDER BY end_date ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectChallenges(rows)
}

// ListChallenges returns all of a user's challenges, newest first.
func (d *DB) ListChallenges(userID string) ([]domain.Challenge, error) {
	rows, err := d.db.Query(
		challengeSelect+` WHERE user_id = ? ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectChallenges(rows)
}

// HasActiveChallenge reports whether the user already has an active
// challenge for the given (type, metric) pair.
func (d *DB) HasActiveChallenge(userID string, ctype domain.ChallengeType, metric domain.TargetMetric) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM challenges
		 WHERE user_id = ? AND type = ? AND metric = ? AND status = 'active'`,
		userID, string(ctype), string(metric),
	).Scan(&count)
	return count > 0, err
}

// DeleteChallenge removes a challenge row.
func (d *DB) DeleteChallenge(id string) error {
	result, err := d.db.Exec(`DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

// ─── Generation bookkeeping ─────────────────────────────────────────────────

// LastGeneration returns when challenges of the given horizon were last
// generated for a user, or nil if never.
func (d *DB) LastGeneration(userID string, ctype domain.ChallengeType) (*time.Time, error) {
	value, err := d.GetMeta(generationKey(userID, ctype))
	if err != nil || value == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("parse last generation: %w", err)
	}
	return &t, nil
}

// SetLastGeneration records a generation run.
func (d *DB) SetLastGeneration(userID string, ctype domain.ChallengeType, at time.Time) error {
	return d.SetMeta(generationKey(userID, ctype), at.UTC().Format(time.RFC3339))
}

func generationKey(userID string, ctype domain.ChallengeType) string {
	return "last_generation:" + string(ctype) + ":" + userID
}

// ─── Scanners ───────────────────────────────────────────────────────────────

const challengeSelect = `SELECT id, user_id, type, metric, target_value, current_value,
        reward_xp, start_date, end_date, status, completed_at, start_stats
 FROM challenges`

func scanChallenge(s scanner) (*domain.Challenge, error) {
	var c domain.Challenge
	var startDate, endDate int64
	var completedAt sql.NullInt64
	var startStats sql.NullString

	err := s.Scan(&c.ID, &c.UserID, &c.Type, &c.Metric, &c.TargetValue,
		&c.CurrentValue, &c.RewardXP, &startDate, &endDate, &c.Status,
		&completedAt, &startStats)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.StartDate = time.Unix(startDate, 0).UTC()
	c.EndDate = time.Unix(endDate, 0).UTC()
	if completedAt.Valid {
		c.CompletedAt = time.Unix(completedAt.Int64, 0).UTC()
	}
	if startStats.Valid && startStats.String != "" {
		var counters domain.ActivityCounters
		if err := json.Unmarshal([]byte(startStats.String), &counters); err != nil {
			return nil, fmt.Errorf("decode start stats: %w", err)
		}
		c.StartStats = &counters
	}
	return &c, nil
}

func collectChallenges(rows *sql.Rows) ([]domain.Challenge, error) {
	defer rows.Close()

	var challenges []domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

func marshalStartStats(c *domain.ActivityCounters) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}
