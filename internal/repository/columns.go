package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

var predictionColumns = []string{
	"game_id", "game_date", "home_team", "away_team", "game_time",
	"home_net_rating", "home_off_rating", "home_def_rating",
	"away_net_rating", "away_off_rating", "away_def_rating",
	"home_pace", "away_pace",
	"home_rest_days", "away_rest_days", "home_back_to_back", "away_back_to_back",
	"home_injury_impact", "away_injury_impact",
	"home_win_probability", "away_win_probability", "predicted_winner", "confidence_score",
	"home_implied_odds", "away_implied_odds", "edge_vs_market",
	"recommendation", "reasoning", "calibration_factors", "generated_at",
}

// dialect captures the differences between the Postgres and SQLite stores
type dialect struct {
	placeholder func(i int) string
	// same is the null-safe equality operator
	same string
	// encodeDate and encodeTime convert key and timestamp columns for writes
	encodeDate func(string) (interface{}, error)
	encodeTime func(time.Time) interface{}
}

var postgresDialect = dialect{
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	same:        "IS NOT DISTINCT FROM",
	encodeDate: func(s string) (interface{}, error) {
		return time.Parse(models.GameDateLayout, s)
	},
	encodeTime: func(t time.Time) interface{} { return t.UTC() },
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	same:        "IS",
	encodeDate:  func(s string) (interface{}, error) { return s, nil },
	encodeTime:  func(t time.Time) interface{} { return t.UTC().Format(time.RFC3339Nano) },
}

// upsertSQL builds the insert that overwrites an existing row in place.
// generated_at is kept when every other column is unchanged, so a rerun on
// the same inputs leaves the row untouched.
func (d dialect) upsertSQL() string {
	placeholders := make([]string, len(predictionColumns))
	updates := make([]string, 0, len(predictionColumns)-2)
	unchanged := make([]string, 0, len(predictionColumns)-3)
	for i, col := range predictionColumns {
		placeholders[i] = d.placeholder(i + 1)
		switch col {
		case "game_id", "game_date", "generated_at":
		default:
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
			unchanged = append(unchanged, fmt.Sprintf("game_predictions.%s %s excluded.%s", col, d.same, col))
		}
	}
	updates = append(updates, fmt.Sprintf(
		"generated_at = CASE WHEN %s THEN game_predictions.generated_at ELSE excluded.generated_at END",
		strings.Join(unchanged, " AND "),
	))

	return fmt.Sprintf(
		"INSERT INTO game_predictions (%s) VALUES (%s) ON CONFLICT (game_id, game_date) DO UPDATE SET %s",
		strings.Join(predictionColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

func (d dialect) selectSQL(where string) string {
	return fmt.Sprintf("SELECT %s FROM game_predictions WHERE %s ORDER BY game_time, game_id",
		strings.Join(predictionColumns, ", "), where)
}

// values returns the column values of p in predictionColumns order
func (d dialect) values(p *models.Prediction) ([]interface{}, error) {
	gameDate, err := d.encodeDate(p.GameDate)
	if err != nil {
		return nil, fmt.Errorf("invalid game date %q: %w", p.GameDate, err)
	}
	factors, err := p.CalibrationFactors.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode calibration factors: %w", err)
	}

	return []interface{}{
		p.GameID, gameDate, p.HomeTeam, p.AwayTeam, p.GameTime,
		p.HomeNetRating, p.HomeOffRating, p.HomeDefRating,
		p.AwayNetRating, p.AwayOffRating, p.AwayDefRating,
		p.HomePace, p.AwayPace,
		p.HomeRestDays, p.AwayRestDays, p.HomeBackToBack, p.AwayBackToBack,
		p.HomeInjuryImpact, p.AwayInjuryImpact,
		p.HomeWinProbability, p.AwayWinProbability, p.PredictedWinner, p.ConfidenceScore,
		p.HomeImpliedOdds, p.AwayImpliedOdds, p.EdgeVsMarket,
		string(p.Recommendation), p.Reasoning, string(factors), d.encodeTime(p.GeneratedAt),
	}, nil
}

// scanPrediction reads one row. gameDate and generatedAt are dialect-specific
// destinations that finish converts onto the prediction.
func scanPrediction(scan func(dest ...interface{}) error, gameDate, generatedAt interface{}, finish func(*models.Prediction) error) (*models.Prediction, error) {
	p := &models.Prediction{}
	var recommendation string
	var factors []byte

	err := scan(
		&p.GameID, gameDate, &p.HomeTeam, &p.AwayTeam, &p.GameTime,
		&p.HomeNetRating, &p.HomeOffRating, &p.HomeDefRating,
		&p.AwayNetRating, &p.AwayOffRating, &p.AwayDefRating,
		&p.HomePace, &p.AwayPace,
		&p.HomeRestDays, &p.AwayRestDays, &p.HomeBackToBack, &p.AwayBackToBack,
		&p.HomeInjuryImpact, &p.AwayInjuryImpact,
		&p.HomeWinProbability, &p.AwayWinProbability, &p.PredictedWinner, &p.ConfidenceScore,
		&p.HomeImpliedOdds, &p.AwayImpliedOdds, &p.EdgeVsMarket,
		&recommendation, &p.Reasoning, &factors, generatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Recommendation = models.Recommendation(recommendation)
	if p.CalibrationFactors, err = models.UnmarshalCalibrationFactors(factors); err != nil {
		return nil, fmt.Errorf("failed to decode calibration factors for game %s: %w", p.GameID, err)
	}
	if err := finish(p); err != nil {
		return nil, err
	}
	return p, nil
}
