package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/game-predictor/internal/models"
)

func profile(net float64) models.TeamStrengthProfile {
	return models.TeamStrengthProfile{NetRating: net}
}

var (
	homeSide = models.MatchupContext{IsHome: true, RestDays: 1}
	awaySide = models.MatchupContext{IsHome: false, RestDays: 1}
)

func TestComputeWinProbabilityReferenceMatchup(t *testing.T) {
	cal := DefaultCalibration()

	wp := ComputeWinProbability(profile(5), profile(-3), homeSide, awaySide, cal)

	assert.InDelta(t, 10.5, wp.HomeDifferential, 1e-9)
	assert.InDelta(t, -10.5, wp.AwayDifferential, 1e-9)
	assert.InDelta(t, 0.829, wp.RawHome, 0.001)
	assert.Equal(t, 0.70, wp.Home)
	assert.Equal(t, 0.30, wp.Away)
	assert.Equal(t, models.SideHome, wp.Winner)
	assert.Equal(t, 0.70, wp.WinnerProbability())
}

func TestComputeWinProbabilityGuardrail(t *testing.T) {
	cal := DefaultCalibration()

	for home := -40.0; home <= 40; home += 2.5 {
		for away := -40.0; away <= 40; away += 2.5 {
			for _, b2b := range []bool{false, true} {
				hc := homeSide
				hc.OnBackToBack = b2b
				wp := ComputeWinProbability(profile(home), profile(away), hc, awaySide, cal)
				require.GreaterOrEqual(t, wp.Home, 0.30)
				require.LessOrEqual(t, wp.Home, 0.70)
				require.GreaterOrEqual(t, wp.Away, 0.30)
				require.LessOrEqual(t, wp.Away, 0.70)
			}
		}
	}
}

func TestDifferentialHomeSwap(t *testing.T) {
	cal := DefaultCalibration()

	asHome := Differential(5, -3, homeSide, awaySide, cal)
	asAway := Differential(5, -3, awaySide, homeSide, cal)

	assert.InDelta(t, 2*cal.HomeCourtAdvantage, asHome-asAway, 1e-9)
	assert.InDelta(t, 5.0, asHome-asAway, 1e-9)
}

func TestBackToBackLowersProbability(t *testing.T) {
	cal := DefaultCalibration()
	tired := homeSide
	tired.OnBackToBack = true

	rested := ComputeWinProbability(profile(0), profile(0), homeSide, awaySide, cal)
	fatigued := ComputeWinProbability(profile(0), profile(0), tired, awaySide, cal)

	assert.Less(t, fatigued.RawHome, rested.RawHome)
	assert.Less(t, fatigued.Home, rested.Home)
	assert.Greater(t, fatigued.RawAway, rested.RawAway)
}

func TestInjuryImpactShiftsDifferential(t *testing.T) {
	cal := DefaultCalibration()
	hurt := homeSide
	hurt.InjuryImpact = 3

	base := Differential(0, 0, homeSide, awaySide, cal)
	injured := Differential(0, 0, hurt, awaySide, cal)
	opponentView := Differential(0, 0, awaySide, hurt, cal)

	assert.InDelta(t, base-3, injured, 1e-9)
	assert.InDelta(t, -base+3, opponentView, 1e-9)
}

func TestTieResolvesToHome(t *testing.T) {
	cal := DefaultCalibration()

	wp := ComputeWinProbability(profile(0), profile(cal.HomeCourtAdvantage), homeSide, awaySide, cal)

	assert.Equal(t, 0.5, wp.RawHome)
	assert.Equal(t, models.SideHome, wp.Winner)
}

func TestAwayWinner(t *testing.T) {
	cal := DefaultCalibration()

	wp := ComputeWinProbability(profile(-4), profile(4), homeSide, awaySide, cal)

	assert.Equal(t, models.SideAway, wp.Winner)
	assert.Equal(t, wp.Away, wp.WinnerProbability())
	assert.Greater(t, wp.Away, wp.Home)
}

func TestLogisticAndClamp(t *testing.T) {
	cal := DefaultCalibration()

	assert.Equal(t, 0.5, Logistic(0, cal.LogisticScale))
	assert.InDelta(t, 0.5927, Logistic(2.5, cal.LogisticScale), 0.0001)
	assert.Equal(t, 0.70, cal.Clamp(0.95))
	assert.Equal(t, 0.30, cal.Clamp(0.01))
	assert.Equal(t, 0.55, cal.Clamp(0.55))
}
