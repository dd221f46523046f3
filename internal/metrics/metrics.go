// Package metrics provides centralized Prometheus metrics registry for the prediction engine.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "runs_total",
		Help:      "Total number of prediction runs by outcome",
	}, []string{"outcome"})
	GamesFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "games_found_total",
		Help:      "Total number of scheduled games fetched",
	})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "predictions_total",
		Help:      "Total number of predictions generated by recommendation",
	}, []string{"recommendation"})
	PredictionsPersistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "predictions_persisted_total",
		Help:      "Total number of predictions written to the store",
	})
	MatchupsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "matchups_skipped_total",
		Help:      "Total number of matchups skipped for missing team data",
	})
	MatchupsFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "matchups_failed_total",
		Help:      "Total number of failed matchups by stage",
	}, []string{"stage"})
	PersistRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "game_predictor",
		Name:      "persist_retries_total",
		Help:      "Total number of persistence chunk retries",
	})
)

// Gauge metrics
var (
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "game_predictor",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed run",
	})
	LastRunPredictions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "game_predictor",
		Name:      "last_run_predictions",
		Help:      "Predictions generated by the last completed run",
	})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "game_predictor",
		Name:      "run_duration_seconds",
		Help:      "Duration of prediction runs in seconds",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 300},
	})
	UpstreamFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "game_predictor",
		Name:      "upstream_fetch_duration_seconds",
		Help:      "Duration of stats provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	WinProbability = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "game_predictor",
		Name:      "winner_probability",
		Help:      "Clamped win probability of the predicted winner",
		Buckets:   []float64{0.5, 0.52, 0.55, 0.6, 0.65, 0.7},
	})
	ConfidenceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "game_predictor",
		Name:      "confidence_score",
		Help:      "Confidence scores of generated predictions",
		Buckets:   []float64{50, 60, 70, 80, 90, 100},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(GamesFoundTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionsPersistedTotal)
		registry.MustRegister(MatchupsSkippedTotal)
		registry.MustRegister(MatchupsFailedTotal)
		registry.MustRegister(PersistRetriesTotal)

		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(LastRunPredictions)

		registry.MustRegister(RunDuration)
		registry.MustRegister(UpstreamFetchDuration)
		registry.MustRegister(WinProbability)
		registry.MustRegister(ConfidenceScore)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// NewServer returns a server exposing the registry at path on its own port.
// The caller owns ListenAndServe and Shutdown.
func NewServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	return &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// RecordRun records a completed run.
func RecordRun(success bool, predictions int, durationSeconds float64, finishedAt int64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.Observe(durationSeconds)
	LastRunTimestamp.Set(float64(finishedAt))
	LastRunPredictions.Set(float64(predictions))
}

// RecordGamesFound records the size of a fetched schedule.
func RecordGamesFound(count int) {
	GamesFoundTotal.Add(float64(count))
}

// RecordPrediction records a classified prediction.
func RecordPrediction(recommendation string, winnerProbability, confidence float64) {
	PredictionsTotal.WithLabelValues(recommendation).Inc()
	WinProbability.Observe(winnerProbability)
	ConfidenceScore.Observe(confidence)
}

// RecordPersisted records predictions written to the store.
func RecordPersisted(count int) {
	PredictionsPersistedTotal.Add(float64(count))
}

// RecordSkipped records a matchup skipped for missing data.
func RecordSkipped() {
	MatchupsSkippedTotal.Inc()
}

// RecordFailed records a matchup that failed at a stage.
func RecordFailed(stage string) {
	MatchupsFailedTotal.WithLabelValues(stage).Inc()
}

// RecordPersistRetry records a retried persistence chunk.
func RecordPersistRetry() {
	PersistRetriesTotal.Inc()
}

// RecordUpstreamFetch records the latency of a provider call.
func RecordUpstreamFetch(operation string, durationSeconds float64) {
	UpstreamFetchDuration.WithLabelValues(operation).Observe(durationSeconds)
}
