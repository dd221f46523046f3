package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game_predictions (
	game_id              TEXT    NOT NULL,
	game_date            TEXT    NOT NULL,
	home_team            TEXT    NOT NULL,
	away_team            TEXT    NOT NULL,
	game_time            TEXT    NOT NULL DEFAULT '',
	home_net_rating      REAL    NOT NULL,
	home_off_rating      REAL    NOT NULL,
	home_def_rating      REAL    NOT NULL,
	away_net_rating      REAL    NOT NULL,
	away_off_rating      REAL    NOT NULL,
	away_def_rating      REAL    NOT NULL,
	home_pace            REAL    NOT NULL,
	away_pace            REAL    NOT NULL,
	home_rest_days       INTEGER NOT NULL,
	away_rest_days       INTEGER NOT NULL,
	home_back_to_back    BOOLEAN NOT NULL,
	away_back_to_back    BOOLEAN NOT NULL,
	home_injury_impact   REAL    NOT NULL DEFAULT 0,
	away_injury_impact   REAL    NOT NULL DEFAULT 0,
	home_win_probability REAL    NOT NULL,
	away_win_probability REAL    NOT NULL,
	predicted_winner     TEXT    NOT NULL,
	confidence_score     REAL    NOT NULL,
	home_implied_odds    REAL,
	away_implied_odds    REAL,
	edge_vs_market       REAL,
	recommendation       TEXT    NOT NULL,
	reasoning            TEXT    NOT NULL,
	calibration_factors  TEXT    NOT NULL DEFAULT '{}',
	generated_at         TEXT    NOT NULL,
	PRIMARY KEY (game_id, game_date)
);
CREATE INDEX IF NOT EXISTS idx_game_predictions_date ON game_predictions (game_date);
CREATE TABLE IF NOT EXISTS team_advanced_stats (
	team_abbreviation TEXT PRIMARY KEY,
	pace              REAL,
	defensive_rating  REAL,
	updated_at        TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSQLiteSchema creates the embedded store's tables if missing
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return nil
}

// SQLitePredictionRepository implements PredictionRepository on the embedded store
type SQLitePredictionRepository struct {
	db *sql.DB
}

// NewSQLitePredictionRepository creates a new prediction repository
func NewSQLitePredictionRepository(db *sql.DB) PredictionRepository {
	return &SQLitePredictionRepository{db: db}
}

// UpsertBatch writes every prediction in one transaction
func (r *SQLitePredictionRepository) UpsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrPersistence, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteDialect.upsertSQL())
	if err != nil {
		return fmt.Errorf("%w: failed to prepare upsert: %v", models.ErrPersistence, err)
	}
	defer stmt.Close()

	for _, p := range predictions {
		args, err := sqliteDialect.values(p)
		if err != nil {
			return fmt.Errorf("%w: game %s: %v", models.ErrPersistence, p.GameID, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("%w: game %s: %v", models.ErrPersistence, p.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit predictions: %v", models.ErrPersistence, err)
	}
	return nil
}

// GetByDate retrieves every prediction for a game date
func (r *SQLitePredictionRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, sqliteDialect.selectSQL("game_date = ?"), date.Format(models.GameDateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanSQLitePrediction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// GetByKey retrieves a single prediction
func (r *SQLitePredictionRepository) GetByKey(ctx context.Context, gameID string, date time.Time) (*models.Prediction, error) {
	day := date.Format(models.GameDateLayout)
	row := r.db.QueryRowContext(ctx, sqliteDialect.selectSQL("game_id = ? AND game_date = ?"), gameID, day)

	p, err := scanSQLitePrediction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: prediction %s on %s", models.ErrNotFound, gameID, day)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

func scanSQLitePrediction(scan func(dest ...interface{}) error) (*models.Prediction, error) {
	var gameDate, generatedAt string
	return scanPrediction(scan, &gameDate, &generatedAt, func(p *models.Prediction) error {
		p.GameDate = gameDate
		t, err := time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return fmt.Errorf("invalid generated_at %q: %w", generatedAt, err)
		}
		p.GeneratedAt = t
		return nil
	})
}

// SQLiteTeamStatsRepository implements TeamStatsRepository on the embedded store
type SQLiteTeamStatsRepository struct {
	db *sql.DB
}

// NewSQLiteTeamStatsRepository creates a new team stats repository
func NewSQLiteTeamStatsRepository(db *sql.DB) TeamStatsRepository {
	return &SQLiteTeamStatsRepository{db: db}
}

// FetchAll returns the supplementary stats table keyed by team abbreviation
func (r *SQLiteTeamStatsRepository) FetchAll(ctx context.Context) (map[string]models.SupplementaryStats, error) {
	rows, err := r.db.QueryContext(ctx, selectTeamStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer rows.Close()

	var stats []models.SupplementaryStats
	for rows.Next() {
		var s models.SupplementaryStats
		if err := rows.Scan(&s.Abbreviation, &s.Pace, &s.DefensiveRating); err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return indexStats(stats), nil
}

// Upsert writes supplementary stats rows
func (r *SQLiteTeamStatsRepository) Upsert(ctx context.Context, stats []models.SupplementaryStats) error {
	const query = `
		INSERT INTO team_advanced_stats (team_abbreviation, pace, defensive_rating, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (team_abbreviation) DO UPDATE
		SET pace = excluded.pace, defensive_rating = excluded.defensive_rating, updated_at = CURRENT_TIMESTAMP
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range stats {
		if _, err := tx.ExecContext(ctx, query, s.Abbreviation, s.Pace, s.DefensiveRating); err != nil {
			return fmt.Errorf("failed to upsert team stats for %s: %w", s.Abbreviation, err)
		}
	}
	return tx.Commit()
}
