package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/game-predictor/internal/database"
	"github.com/yourusername/game-predictor/internal/models"
)

const (
	selectTeamStatsSQL = `
		SELECT team_abbreviation, COALESCE(pace, 0), COALESCE(defensive_rating, 0)
		FROM team_advanced_stats
	`
	upsertTeamStatsPostgresSQL = `
		INSERT INTO team_advanced_stats (team_abbreviation, pace, defensive_rating, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (team_abbreviation) DO UPDATE
		SET pace = excluded.pace, defensive_rating = excluded.defensive_rating, updated_at = NOW()
	`
)

// PostgresTeamStatsRepository implements TeamStatsRepository for PostgreSQL
type PostgresTeamStatsRepository struct {
	db *database.DB
}

// NewPostgresTeamStatsRepository creates a new team stats repository
func NewPostgresTeamStatsRepository(db *database.DB) TeamStatsRepository {
	return &PostgresTeamStatsRepository{db: db}
}

// FetchAll returns the supplementary stats table keyed by team abbreviation
func (r *PostgresTeamStatsRepository) FetchAll(ctx context.Context) (map[string]models.SupplementaryStats, error) {
	rows, err := r.db.GetPool().Query(ctx, selectTeamStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}

	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SupplementaryStats, error) {
		var s models.SupplementaryStats
		err := row.Scan(&s.Abbreviation, &s.Pace, &s.DefensiveRating)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan team stats: %w", err)
	}

	return indexStats(stats), nil
}

// Upsert writes supplementary stats rows
func (r *PostgresTeamStatsRepository) Upsert(ctx context.Context, stats []models.SupplementaryStats) error {
	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(upsertTeamStatsPostgresSQL, s.Abbreviation, s.Pace, s.DefensiveRating)
	}
	if err := r.db.GetPool().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert team stats: %w", err)
	}
	return nil
}

func indexStats(stats []models.SupplementaryStats) map[string]models.SupplementaryStats {
	out := make(map[string]models.SupplementaryStats, len(stats))
	for _, s := range stats {
		out[s.Abbreviation] = s
	}
	return out
}
