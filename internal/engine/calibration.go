// Package engine implements the deterministic win-probability model: team
// strength profiles, situational adjustments, the guardrailed logistic
// transform, market comparison, recommendation and confidence scoring.
package engine

import (
	"fmt"
)

// DefaultModelVersion identifies the formula set recorded with each prediction
const DefaultModelVersion = "net-rating-logistic-v1"

// Calibration holds every tunable constant of the model
type Calibration struct {
	ModelVersion         string
	NetRatingScale       float64
	NeutralPointsPerGame float64
	DefaultPace          float64
	DefaultRestDays      int
	HomeCourtAdvantage   float64
	BackToBackPenalty    float64
	LogisticScale        float64
	ProbabilityFloor     float64
	ProbabilityCeiling   float64
	RemoveVig            bool
	Thresholds           RecommendationThresholds
	Confidence           ConfidenceWeights
}

// RecommendationThresholds are the cut-offs of the ordered recommendation rules
type RecommendationThresholds struct {
	StrongLeanProbability float64
	StrongLeanEdge        float64
	LeanProbability       float64
	LeanEdge              float64
	SlightLeanProbability float64
	NoEdgeProbability     float64
}

// SampleSizeTier awards Bonus when the smaller games-played count reaches MinGames
type SampleSizeTier struct {
	MinGames int
	Bonus    float64
}

// ConfidenceWeights parameterise the confidence score
type ConfidenceWeights struct {
	Base               float64
	DataQualityWeight  float64
	FullDataQuality    float64
	PartialDataQuality float64
	InjuryDataBonus    float64
	SampleSizeTiers    []SampleSizeTier
}

// DefaultCalibration returns the reference calibration
func DefaultCalibration() Calibration {
	return Calibration{
		ModelVersion:         DefaultModelVersion,
		NetRatingScale:       2.0,
		NeutralPointsPerGame: 110.0,
		DefaultPace:          100.0,
		DefaultRestDays:      1,
		HomeCourtAdvantage:   2.5,
		BackToBackPenalty:    1.5,
		LogisticScale:        0.15,
		ProbabilityFloor:     0.30,
		ProbabilityCeiling:   0.70,
		Thresholds: RecommendationThresholds{
			StrongLeanProbability: 0.60,
			StrongLeanEdge:        0.05,
			LeanProbability:       0.55,
			LeanEdge:              0.03,
			SlightLeanProbability: 0.52,
			NoEdgeProbability:     0.48,
		},
		Confidence: ConfidenceWeights{
			Base:               50,
			DataQualityWeight:  20,
			FullDataQuality:    0.8,
			PartialDataQuality: 0.6,
			InjuryDataBonus:    10,
			SampleSizeTiers: []SampleSizeTier{
				{MinGames: 30, Bonus: 15},
				{MinGames: 20, Bonus: 10},
				{MinGames: 10, Bonus: 5},
			},
		},
	}
}

// Validate checks the calibration for values the model cannot work with
func (c Calibration) Validate() error {
	if c.NetRatingScale <= 0 {
		return fmt.Errorf("net_rating_scale must be positive, got %v", c.NetRatingScale)
	}
	if c.LogisticScale <= 0 {
		return fmt.Errorf("logistic_scale must be positive, got %v", c.LogisticScale)
	}
	if c.NeutralPointsPerGame <= 0 || c.DefaultPace <= 0 {
		return fmt.Errorf("neutral_points_per_game and default_pace must be positive")
	}
	if c.HomeCourtAdvantage < 0 || c.BackToBackPenalty < 0 {
		return fmt.Errorf("home_court_advantage and back_to_back_penalty cannot be negative")
	}
	if c.DefaultRestDays < 0 {
		return fmt.Errorf("default_rest_days cannot be negative")
	}
	if c.ProbabilityFloor < 0 || c.ProbabilityCeiling > 1 || c.ProbabilityFloor >= c.ProbabilityCeiling {
		return fmt.Errorf("probability guardrail [%v, %v] is invalid", c.ProbabilityFloor, c.ProbabilityCeiling)
	}
	t := c.Thresholds
	if !(t.StrongLeanProbability >= t.LeanProbability &&
		t.LeanProbability >= t.SlightLeanProbability &&
		t.SlightLeanProbability >= t.NoEdgeProbability) {
		return fmt.Errorf("recommendation probability thresholds must be non-increasing")
	}
	for i := 1; i < len(c.Confidence.SampleSizeTiers); i++ {
		if c.Confidence.SampleSizeTiers[i].MinGames >= c.Confidence.SampleSizeTiers[i-1].MinGames {
			return fmt.Errorf("sample size tiers must be ordered by descending min_games")
		}
	}
	return nil
}

// Fields flattens the calibration for structured logs
func (c Calibration) Fields() map[string]interface{} {
	return map[string]interface{}{
		"net_rating_scale":     c.NetRatingScale,
		"home_court_advantage": c.HomeCourtAdvantage,
		"back_to_back_penalty": c.BackToBackPenalty,
		"logistic_scale":       c.LogisticScale,
		"probability_floor":    c.ProbabilityFloor,
		"probability_ceiling":  c.ProbabilityCeiling,
		"remove_vig":           c.RemoveVig,
	}
}
