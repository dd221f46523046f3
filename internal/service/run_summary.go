package service

import (
	"fmt"
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

// RunSummary is the outcome of one orchestrator run
type RunSummary struct {
	RunID                string                  `json:"run_id"`
	Date                 string                  `json:"date"`
	DryRun               bool                    `json:"dry_run"`
	GamesFound           int                     `json:"games_found"`
	PredictionsGenerated int                     `json:"predictions_generated"`
	PredictionsPersisted int                     `json:"predictions_persisted"`
	SkippedGameIDs       []string                `json:"skipped_game_ids"`
	FailedGameIDs        []string                `json:"failed_game_ids"`
	States               map[string]MatchupState `json:"states"`
	Success              bool                    `json:"success"`
	ErrorMessage         string                  `json:"error_message,omitempty"`
	StartedAt            time.Time               `json:"started_at"`
	Duration             time.Duration           `json:"duration"`

	// Predictions holds every classified prediction in schedule order
	Predictions []*models.Prediction `json:"-"`
}

// NewRunSummary creates an empty summary for a run
func NewRunSummary(runID string, date time.Time, startedAt time.Time, dryRun bool) *RunSummary {
	return &RunSummary{
		RunID:          runID,
		Date:           date.Format(models.GameDateLayout),
		DryRun:         dryRun,
		SkippedGameIDs: []string{},
		FailedGameIDs:  []string{},
		States:         map[string]MatchupState{},
		StartedAt:      startedAt,
	}
}

// record folds a finished matchup into the summary
func (s *RunSummary) record(m *matchup) {
	s.States[m.game.GameID] = m.state
	switch m.state {
	case StateSkipped:
		s.SkippedGameIDs = append(s.SkippedGameIDs, m.game.GameID)
	case StateFailed:
		s.FailedGameIDs = append(s.FailedGameIDs, m.game.GameID)
		s.addError(m.err)
	case StatePersisted:
		s.PredictionsPersisted++
	}
}

func (s *RunSummary) addError(err error) {
	if err == nil {
		return
	}
	if s.ErrorMessage == "" {
		s.ErrorMessage = err.Error()
		return
	}
	s.ErrorMessage += "; " + err.Error()
}

// fail marks the whole run as failed
func (s *RunSummary) fail(err error) {
	s.Success = false
	s.addError(err)
}

// String returns a formatted string representation of the summary
func (s *RunSummary) String() string {
	return fmt.Sprintf(
		"RunSummary{ID=%s, Date=%s, Games=%d, Generated=%d, Persisted=%d, Skipped=%d, Failed=%d, Success=%t, Duration=%v}",
		s.RunID,
		s.Date,
		s.GamesFound,
		s.PredictionsGenerated,
		s.PredictionsPersisted,
		len(s.SkippedGameIDs),
		len(s.FailedGameIDs),
		s.Success,
		s.Duration,
	)
}
