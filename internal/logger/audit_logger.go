package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogCalibration records the model parameters a run used.
func (al *AuditLogger) LogCalibration(runID, modelVersion string, params map[string]interface{}) {
	al.WithFields(logrus.Fields{
		"run_id":        runID,
		"model_version": modelVersion,
		"calibration":   params,
	}).Info("Calibration in effect")
}

// LogPredictionsPersisted records a written chunk.
func (al *AuditLogger) LogPredictionsPersisted(runID string, gameIDs []string, attempts int) {
	al.WithFields(logrus.Fields{
		"run_id":   runID,
		"game_ids": gameIDs,
		"count":    len(gameIDs),
		"attempts": attempts,
	}).Info("Predictions persisted")
}

// LogPersistenceFailure records a chunk that could not be written.
func (al *AuditLogger) LogPersistenceFailure(runID string, gameIDs []string, attempts int, err error) {
	al.WithFields(logrus.Fields{
		"run_id":   runID,
		"game_ids": gameIDs,
		"count":    len(gameIDs),
		"attempts": attempts,
	}).WithError(err).Error("Prediction persistence failed")
}

// LogDryRun records that a run skipped persistence.
func (al *AuditLogger) LogDryRun(runID string, predictions int) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"predictions": predictions,
	}).Info("Dry run, predictions not persisted")
}
