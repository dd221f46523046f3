package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/game-predictor/internal/database"
	"github.com/yourusername/game-predictor/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// UpsertBatch queues one upsert per prediction and sends them as a single
// batch inside a transaction
func (r *PostgresPredictionRepository) UpsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	query := postgresDialect.upsertSQL()
	batch := &pgx.Batch{}
	for _, p := range predictions {
		args, err := postgresDialect.values(p)
		if err != nil {
			return fmt.Errorf("%w: game %s: %v", models.ErrPersistence, p.GameID, err)
		}
		batch.Queue(query, args...)
	}

	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		tx, _ := database.TxFromContext(txCtx)
		results := tx.SendBatch(txCtx, batch)
		for _, p := range predictions {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("game %s: %w", p.GameID, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upsert predictions: %v", models.ErrPersistence, err)
	}
	return nil
}

// GetByDate retrieves every prediction for a game date
func (r *PostgresPredictionRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Prediction, error) {
	rows, err := r.db.GetPool().Query(ctx, postgresDialect.selectSQL("game_date = $1"), dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPostgresPrediction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// GetByKey retrieves a single prediction
func (r *PostgresPredictionRepository) GetByKey(ctx context.Context, gameID string, date time.Time) (*models.Prediction, error) {
	row := r.db.GetPool().QueryRow(ctx, postgresDialect.selectSQL("game_id = $1 AND game_date = $2"), gameID, dateOnly(date))

	p, err := scanPostgresPrediction(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: prediction %s on %s", models.ErrNotFound, gameID, date.Format(models.GameDateLayout))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

func scanPostgresPrediction(scan func(dest ...interface{}) error) (*models.Prediction, error) {
	var gameDate, generatedAt time.Time
	return scanPrediction(scan, &gameDate, &generatedAt, func(p *models.Prediction) error {
		p.GameDate = gameDate.Format(models.GameDateLayout)
		p.GeneratedAt = generatedAt.UTC()
		return nil
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
