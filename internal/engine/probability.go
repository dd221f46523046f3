package engine

import (
	"math"

	"github.com/yourusername/game-predictor/internal/models"
)

// WinProbability is the model output for both sides of a matchup.
// Home and Away are clamped independently and need not sum to 1.
type WinProbability struct {
	HomeDifferential float64
	AwayDifferential float64
	RawHome          float64
	RawAway          float64
	Home             float64
	Away             float64
	Winner           models.Side
}

// WinnerProbability returns the clamped probability of the predicted winner
func (w WinProbability) WinnerProbability() float64 {
	if w.Winner == models.SideAway {
		return w.Away
	}
	return w.Home
}

// Differential is the effective point differential from side's perspective
func Differential(sideNet, opponentNet float64, side, opponent models.MatchupContext, cal Calibration) float64 {
	return sideNet - opponentNet + ContextDelta(side, opponent, cal)
}

// Logistic maps a point differential to a probability
func Logistic(differential, scale float64) float64 {
	return 1 / (1 + math.Exp(-scale*differential))
}

// Clamp applies the probability guardrail
func (c Calibration) Clamp(p float64) float64 {
	return math.Max(c.ProbabilityFloor, math.Min(c.ProbabilityCeiling, p))
}

// ComputeWinProbability evaluates the model once per side. The winner is
// decided on the unclamped home probability; a tie goes to the home side.
func ComputeWinProbability(home, away models.TeamStrengthProfile, homeCtx, awayCtx models.MatchupContext, cal Calibration) WinProbability {
	homeDiff := Differential(home.NetRating, away.NetRating, homeCtx, awayCtx, cal)
	awayDiff := Differential(away.NetRating, home.NetRating, awayCtx, homeCtx, cal)

	rawHome := Logistic(homeDiff, cal.LogisticScale)
	rawAway := Logistic(awayDiff, cal.LogisticScale)

	winner := models.SideHome
	if rawHome < 0.5 {
		winner = models.SideAway
	}

	return WinProbability{
		HomeDifferential: homeDiff,
		AwayDifferential: awayDiff,
		RawHome:          rawHome,
		RawAway:          rawAway,
		Home:             cal.Clamp(rawHome),
		Away:             cal.Clamp(rawAway),
		Winner:           winner,
	}
}
