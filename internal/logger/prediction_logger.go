package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for matchup evaluation.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// ForRun returns a logger tagged with a run id.
func (pl *PredictionLogger) ForRun(runID, date string) *PredictionLogger {
	return &PredictionLogger{Entry: pl.WithFields(logrus.Fields{
		"run_id":    runID,
		"game_date": date,
	})}
}

// LogMatchupEvaluated logs a classified matchup.
func (pl *PredictionLogger) LogMatchupEvaluated(gameID, homeTeam, awayTeam, winner string, winnerProbability float64, edge *float64, recommendation string, confidence float64) {
	fields := logrus.Fields{
		"game_id":            gameID,
		"home_team":          homeTeam,
		"away_team":          awayTeam,
		"predicted_winner":   winner,
		"winner_probability": winnerProbability,
		"recommendation":     recommendation,
		"confidence_score":   confidence,
	}
	if edge != nil {
		fields["edge_vs_market"] = *edge
	}
	pl.WithFields(fields).Debug("Matchup evaluated")
}

// LogMatchupSkipped logs a matchup that could not be profiled.
func (pl *PredictionLogger) LogMatchupSkipped(gameID, homeTeam, awayTeam string, err error) {
	pl.WithFields(logrus.Fields{
		"game_id":   gameID,
		"home_team": homeTeam,
		"away_team": awayTeam,
	}).WithError(err).Warn("Matchup skipped")
}

// LogMatchupFailed logs a matchup that stopped at a stage.
func (pl *PredictionLogger) LogMatchupFailed(gameID, stage string, err error) {
	pl.WithFields(logrus.Fields{
		"game_id": gameID,
		"stage":   stage,
	}).WithError(err).Error("Matchup failed")
}

// LogRunSummary logs the outcome of a run.
func (pl *PredictionLogger) LogRunSummary(gamesFound, generated, persisted, skipped, failed int, success bool, duration time.Duration) {
	entry := pl.WithFields(logrus.Fields{
		"games_found":           gamesFound,
		"predictions_generated": generated,
		"predictions_persisted": persisted,
		"skipped":               skipped,
		"failed":                failed,
		"success":               success,
		"duration_ms":           duration.Milliseconds(),
	})
	if success {
		entry.Info("Prediction run completed")
		return
	}
	entry.Warn("Prediction run completed with errors")
}
