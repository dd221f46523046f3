package engine

import (
	"math"

	"github.com/yourusername/game-predictor/internal/models"
	"github.com/yourusername/game-predictor/internal/odds"
)

// MarketComparison is the optional market view of a matchup.
// All fields are nil when no usable price exists.
type MarketComparison struct {
	HomeImplied *float64
	AwayImplied *float64
	Edge        *float64
	VigRemoved  bool
}

// CompareMarket computes the edge of the predicted winner against the market.
// With only the other side priced, the winner's implied probability is its complement.
func CompareMarket(game *models.ScheduledGame, winner models.Side, winnerProbability float64, removeVig bool) MarketComparison {
	var cmp MarketComparison

	homeImplied := impliedFromLine(game.HomeMoneyline)
	awayImplied := impliedFromLine(game.AwayMoneyline)
	if homeImplied == nil && awayImplied == nil {
		return cmp
	}

	if removeVig && homeImplied != nil && awayImplied != nil {
		h, a := odds.RemoveVig(*homeImplied, *awayImplied)
		homeImplied, awayImplied = &h, &a
		cmp.VigRemoved = true
	}
	cmp.HomeImplied = homeImplied
	cmp.AwayImplied = awayImplied

	own, other := homeImplied, awayImplied
	if winner == models.SideAway {
		own, other = awayImplied, homeImplied
	}

	var implied float64
	if own != nil {
		implied = *own
	} else {
		implied = 1 - *other
	}

	edge := roundTo(winnerProbability-implied, 4)
	cmp.Edge = &edge
	return cmp
}

func impliedFromLine(line *int) *float64 {
	if line == nil {
		return nil
	}
	p := odds.AmericanToImplied(*line)
	if p == 0 {
		return nil
	}
	p = roundTo(p, 4)
	return &p
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
