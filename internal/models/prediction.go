package models

import (
	"encoding/json"
	"time"
)

// Recommendation is the discrete category attached to a prediction
type Recommendation string

const (
	RecommendationStrongLean Recommendation = "strong_lean"
	RecommendationLean       Recommendation = "lean"
	RecommendationSlightLean Recommendation = "slight_lean"
	RecommendationNoEdge     Recommendation = "no_edge"
	RecommendationAvoid      Recommendation = "avoid"
)

// Prediction is the persisted output for one game, unique on (GameID, GameDate)
type Prediction struct {
	GameID   string `db:"game_id" json:"game_id" validate:"required"`
	GameDate string `db:"game_date" json:"game_date" validate:"required,datetime=2006-01-02"`
	HomeTeam string `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam string `db:"away_team" json:"away_team" validate:"required,nefield=HomeTeam"`
	GameTime string `db:"game_time" json:"game_time"`

	HomeNetRating float64 `db:"home_net_rating" json:"home_net_rating"`
	HomeOffRating float64 `db:"home_off_rating" json:"home_off_rating" validate:"gte=0"`
	HomeDefRating float64 `db:"home_def_rating" json:"home_def_rating" validate:"gte=0"`
	AwayNetRating float64 `db:"away_net_rating" json:"away_net_rating"`
	AwayOffRating float64 `db:"away_off_rating" json:"away_off_rating" validate:"gte=0"`
	AwayDefRating float64 `db:"away_def_rating" json:"away_def_rating" validate:"gte=0"`
	HomePace      float64 `db:"home_pace" json:"home_pace" validate:"gt=0"`
	AwayPace      float64 `db:"away_pace" json:"away_pace" validate:"gt=0"`

	HomeRestDays     int     `db:"home_rest_days" json:"home_rest_days" validate:"gte=0"`
	AwayRestDays     int     `db:"away_rest_days" json:"away_rest_days" validate:"gte=0"`
	HomeBackToBack   bool    `db:"home_back_to_back" json:"home_back_to_back"`
	AwayBackToBack   bool    `db:"away_back_to_back" json:"away_back_to_back"`
	HomeInjuryImpact float64 `db:"home_injury_impact" json:"home_injury_impact" validate:"gte=0"`
	AwayInjuryImpact float64 `db:"away_injury_impact" json:"away_injury_impact" validate:"gte=0"`

	HomeWinProbability float64 `db:"home_win_probability" json:"home_win_probability" validate:"gte=0,lte=1"`
	AwayWinProbability float64 `db:"away_win_probability" json:"away_win_probability" validate:"gte=0,lte=1"`
	PredictedWinner    string  `db:"predicted_winner" json:"predicted_winner" validate:"required"`
	ConfidenceScore    float64 `db:"confidence_score" json:"confidence_score" validate:"gte=0,lte=100"`

	HomeImpliedOdds *float64 `db:"home_implied_odds" json:"home_implied_odds"`
	AwayImpliedOdds *float64 `db:"away_implied_odds" json:"away_implied_odds"`
	EdgeVsMarket    *float64 `db:"edge_vs_market" json:"edge_vs_market"`

	Recommendation     Recommendation     `db:"recommendation" json:"recommendation" validate:"required,oneof=strong_lean lean slight_lean no_edge avoid"`
	Reasoning          string             `db:"reasoning" json:"reasoning" validate:"required"`
	CalibrationFactors CalibrationFactors `db:"calibration_factors" json:"calibration_factors"`
	GeneratedAt        time.Time          `db:"generated_at" json:"generated_at" validate:"required"`
}

// Key returns the composite identity of the prediction
func (p *Prediction) Key() string {
	return p.GameID + "|" + p.GameDate
}

// WinnerProbability returns the clamped probability of the predicted winner
func (p *Prediction) WinnerProbability() float64 {
	if p.PredictedWinner == p.AwayTeam {
		return p.AwayWinProbability
	}
	return p.HomeWinProbability
}

// HasMarket reports whether market fields were populated
func (p *Prediction) HasMarket() bool {
	return p.EdgeVsMarket != nil
}

// CalibrationFactors records the raw inputs used for a prediction for audit
// and backtesting.
type CalibrationFactors struct {
	ModelVersion string `json:"model_version"`

	HomeWins                 int     `json:"home_wins"`
	HomeLosses               int     `json:"home_losses"`
	HomePointsPerGame        float64 `json:"home_points_per_game"`
	HomePointsAllowedPerGame float64 `json:"home_points_allowed_per_game"`
	AwayWins                 int     `json:"away_wins"`
	AwayLosses               int     `json:"away_losses"`
	AwayPointsPerGame        float64 `json:"away_points_per_game"`
	AwayPointsAllowedPerGame float64 `json:"away_points_allowed_per_game"`

	NetRatingScale     float64 `json:"net_rating_scale"`
	HomeCourtAdvantage float64 `json:"home_court_advantage"`
	BackToBackPenalty  float64 `json:"back_to_back_penalty"`
	LogisticScale      float64 `json:"logistic_scale"`
	ProbabilityFloor   float64 `json:"probability_floor"`
	ProbabilityCeiling float64 `json:"probability_ceiling"`

	HomeDifferential   float64 `json:"home_differential"`
	AwayDifferential   float64 `json:"away_differential"`
	RawHomeProbability float64 `json:"raw_home_probability"`
	RawAwayProbability float64 `json:"raw_away_probability"`

	HomeSupplementary bool    `json:"home_supplementary"`
	AwaySupplementary bool    `json:"away_supplementary"`
	MinGamesPlayed    int     `json:"min_games_played"`
	DataQuality       float64 `json:"data_quality"`
	SampleSizeBonus   float64 `json:"sample_size_bonus"`
	InjuryDataBonus   float64 `json:"injury_data_bonus"`

	HomeMoneyline *int `json:"home_moneyline,omitempty"`
	AwayMoneyline *int `json:"away_moneyline,omitempty"`
	VigRemoved    bool `json:"vig_removed"`
}

// Marshal encodes the factors for a JSON column
func (c CalibrationFactors) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalCalibrationFactors decodes a JSON column into factors
func UnmarshalCalibrationFactors(data []byte) (CalibrationFactors, error) {
	var c CalibrationFactors
	if len(data) == 0 {
		return c, nil
	}
	err := json.Unmarshal(data, &c)
	return c, err
}
