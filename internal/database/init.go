package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/game-predictor/internal/config"
)

// Initialize creates a Postgres connection pool and verifies the schema
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, err
	}

	var exists bool
	err = db.pool.QueryRow(ctx, "SELECT to_regclass('public.game_predictions') IS NOT NULL").Scan(&exists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}

	if !exists && logger != nil {
		logger.Warn("Table game_predictions not found. Apply migrations/001_create_game_predictions.sql")
	}

	return db, nil
}
