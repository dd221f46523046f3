package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}

	log := New("debug", "production", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = New("bogus", "development", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestPredictionLoggerMatchupEvaluated(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log).ForRun("run-1", "2024-01-10")

	edge := 0.0333
	predictionLogger.LogMatchupEvaluated("1001", "BOS", "LAL", "BOS", 0.70, &edge, "lean", 81)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "prediction", logEntry["component"])
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, "1001", logEntry["game_id"])
	assert.Equal(t, 0.0333, logEntry["edge_vs_market"])
	assert.Equal(t, "lean", logEntry["recommendation"])
}

func TestPredictionLoggerNoEdgeField(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogMatchupEvaluated("1001", "BOS", "LAL", "BOS", 0.70, nil, "lean", 77)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	_, ok := logEntry["edge_vs_market"]
	assert.False(t, ok)
}

func TestPredictionLoggerSkippedAndFailed(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogMatchupSkipped("1002", "NYK", "XXX", errors.New("missing team data"))
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "missing team data", logEntry["error"])

	buf.Reset()
	predictionLogger.LogMatchupFailed("1003", "persist", errors.New("boom"))
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "persist", logEntry["stage"])
}

func TestPredictionLoggerRunSummary(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogRunSummary(10, 9, 9, 1, 0, true, 1500*time.Millisecond)
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])

	buf.Reset()
	predictionLogger.LogRunSummary(10, 9, 4, 1, 5, false, time.Second)
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
}

func TestAuditLoggerCalibration(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogCalibration("run-1", "net-rating-logistic-v1", map[string]interface{}{"logistic_scale": 0.15})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "net-rating-logistic-v1", logEntry["model_version"])
}

func TestAuditLoggerPersistence(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPredictionsPersisted("run-1", []string{"1001", "1002"}, 1)
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(2), logEntry["count"])

	buf.Reset()
	auditLogger.LogPersistenceFailure("run-1", []string{"1003"}, 3, errors.New("connection refused"))
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(3), logEntry["attempts"])
	assert.Equal(t, "connection refused", logEntry["error"])
}

func TestAuditLoggerDryRun(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogDryRun("run-1", 5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(5), logEntry["predictions"])
}
