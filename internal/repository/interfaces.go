// Package repository persists predictions and reads supplementary team stats.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	// UpsertBatch writes predictions keyed by (game_id, game_date). A batch is
	// atomic: either every row is written or none is.
	UpsertBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByDate(ctx context.Context, date time.Time) ([]*models.Prediction, error)
	GetByKey(ctx context.Context, gameID string, date time.Time) (*models.Prediction, error)
}

// TeamStatsRepository reads the optional per-team pace and defensive figures
type TeamStatsRepository interface {
	FetchAll(ctx context.Context) (map[string]models.SupplementaryStats, error)
	Upsert(ctx context.Context, stats []models.SupplementaryStats) error
}
