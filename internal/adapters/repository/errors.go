package repository

import "errors"

// Sentinel kinds for roster history errors.
var (
	ErrNotFound      = errors.New("roster not found")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidRoster = errors.New("roster has no id")
)
