package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yourusername/game-predictor/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Predictions PredictionRepository
	TeamStats   TeamStatsRepository
}

// NewRepositories creates the Postgres-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Predictions: NewPostgresPredictionRepository(db),
		TeamStats:   NewPostgresTeamStatsRepository(db),
	}, nil
}

// NewSQLiteRepositories creates the embedded-store repositories, creating the
// schema first
func NewSQLiteRepositories(ctx context.Context, db *sql.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := EnsureSQLiteSchema(ctx, db); err != nil {
		return nil, err
	}

	return &Repositories{
		Predictions: NewSQLitePredictionRepository(db),
		TeamStats:   NewSQLiteTeamStatsRepository(db),
	}, nil
}
