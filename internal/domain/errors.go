package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Validation happens
// at the service boundary; the pure engine functions are total and never
// return these.

var (
	// Challenge errors
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrInvalidChallengeType = errors.New("challenge type must be daily or weekly")
	ErrInvalidTargetMetric  = errors.New("target metric must be commits, prs, reviews or issues")
	ErrInvalidTargetValue   = errors.New("target value must be positive")
	ErrDuplicateChallenge   = errors.New("an active challenge already exists for this type and metric")
	ErrChallengeTerminal    = errors.New("challenge is completed or failed and cannot change")

	// Badge errors
	ErrBadgeNotFound = errors.New("badge not found in catalog")

	// Stats errors
	ErrUserNotFound = errors.New("user has no recorded stats")
	ErrNoSnapshots  = errors.New("no snapshot history for user")

	// XP errors
	ErrNonPositiveXP = errors.New("xp amount must be positive")
)
