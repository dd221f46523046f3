package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/game-predictor/internal/engine"
	"github.com/yourusername/game-predictor/internal/models"
)

const probabilityTolerance = 1e-9

// PredictionValidator checks a prediction before it is persisted
type PredictionValidator struct {
	validate *validator.Validate
	cal      engine.Calibration
}

// NewPredictionValidator creates a validator bound to the calibration's guardrails
func NewPredictionValidator(cal engine.Calibration) *PredictionValidator {
	return &PredictionValidator{validate: validator.New(), cal: cal}
}

// Validate returns an error wrapping models.ErrInvalidPrediction listing every
// violated constraint
func (v *PredictionValidator) Validate(p *models.Prediction) error {
	var errs []string

	if err := v.validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	for name, prob := range map[string]float64{"home": p.HomeWinProbability, "away": p.AwayWinProbability} {
		if prob < v.cal.ProbabilityFloor-probabilityTolerance || prob > v.cal.ProbabilityCeiling+probabilityTolerance {
			errs = append(errs, fmt.Sprintf("%s win probability %.4f outside [%.2f, %.2f]",
				name, prob, v.cal.ProbabilityFloor, v.cal.ProbabilityCeiling))
		}
	}

	if p.PredictedWinner != p.HomeTeam && p.PredictedWinner != p.AwayTeam {
		errs = append(errs, fmt.Sprintf("predicted winner %s is not in the matchup", p.PredictedWinner))
	}

	if p.Recommendation == models.RecommendationStrongLean && !p.HasMarket() {
		errs = append(errs, "strong_lean requires a market edge")
	}

	hasImplied := p.HomeImpliedOdds != nil || p.AwayImpliedOdds != nil
	if hasImplied != p.HasMarket() {
		errs = append(errs, "edge and implied odds must be set together")
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Strings(errs)
	return fmt.Errorf("%w: %s", models.ErrInvalidPrediction, strings.Join(errs, "; "))
}
