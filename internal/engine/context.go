package engine

import (
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

// InjuryImpactFunc returns the points of strength a team is missing on a date
type InjuryImpactFunc func(team string, date time.Time) float64

// NoInjuryImpact is the stub used until an injury feed is wired in
func NoInjuryImpact(string, time.Time) float64 {
	return 0
}

// BuildMatchupContext assembles the situational inputs for one side.
// Rest days come from the previous game date when it falls on an earlier
// calendar day. A previous date on or after the game day is ignored, leaving
// the provider flag and the calibrated default rest in charge.
func BuildMatchupContext(isHome, onBackToBack bool, lastGame *time.Time, gameDate time.Time, injuryImpact float64, cal Calibration) models.MatchupContext {
	restDays := cal.DefaultRestDays
	if lastGame != nil {
		if gap := daysBetween(*lastGame, gameDate); gap > 0 {
			restDays = gap - 1
			if restDays == 0 {
				onBackToBack = true
			}
		}
	}
	if onBackToBack {
		restDays = 0
	}
	if injuryImpact < 0 {
		injuryImpact = 0
	}

	return models.MatchupContext{
		IsHome:       isHome,
		OnBackToBack: onBackToBack,
		RestDays:     restDays,
		InjuryImpact: injuryImpact,
	}
}

// ContextDelta is the point-differential adjustment for side against opponent:
// home court, fatigue and injuries, each applied with the sign of the perspective.
func ContextDelta(side, opponent models.MatchupContext, cal Calibration) float64 {
	delta := 0.0

	switch {
	case side.IsHome:
		delta += cal.HomeCourtAdvantage
	case opponent.IsHome:
		delta -= cal.HomeCourtAdvantage
	}

	if side.OnBackToBack {
		delta -= cal.BackToBackPenalty
	}
	if opponent.OnBackToBack {
		delta += cal.BackToBackPenalty
	}

	delta -= side.InjuryImpact
	delta += opponent.InjuryImpact

	return delta
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
