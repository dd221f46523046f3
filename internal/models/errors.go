package models

import (
	"errors"
	"fmt"
)

// Run-level and matchup-level errors
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrUpstreamFetch     = errors.New("upstream fetch failed")
	ErrMissingTeamData   = errors.New("missing team data")
	ErrPersistence       = errors.New("persistence failed")
	ErrInvalidPrediction = errors.New("invalid prediction")
	ErrNotFound          = errors.New("record not found")
)

// MatchupError records the stage at which a single matchup stopped.
type MatchupError struct {
	GameID string
	Stage  string
	Err    error
}

func (e *MatchupError) Error() string {
	return fmt.Sprintf("game %s: %s: %v", e.GameID, e.Stage, e.Err)
}

func (e *MatchupError) Unwrap() error {
	return e.Err
}
