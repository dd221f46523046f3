package engine

import (
	"math"
)

// ConfidenceInput describes the quality of the data behind a prediction
type ConfidenceInput struct {
	HomeGamesPlayed        int
	AwayGamesPlayed        int
	HomeSupplementary      bool
	AwaySupplementary      bool
	InjuryDataIncorporated bool
}

// ConfidenceResult is the score and its components
type ConfidenceResult struct {
	Score           float64
	DataQuality     float64
	SampleSizeBonus float64
	InjuryDataBonus float64
	MinGamesPlayed  int
}

// ScoreConfidence computes base + dataQuality*weight + sample bonus + injury
// bonus, clamped to [0, 100] and rounded to one decimal.
func ScoreConfidence(in ConfidenceInput, w ConfidenceWeights) ConfidenceResult {
	quality := w.PartialDataQuality
	if in.HomeSupplementary && in.AwaySupplementary {
		quality = w.FullDataQuality
	}

	minGames := in.HomeGamesPlayed
	if in.AwayGamesPlayed < minGames {
		minGames = in.AwayGamesPlayed
	}

	sampleBonus := 0.0
	for _, tier := range w.SampleSizeTiers {
		if minGames >= tier.MinGames {
			sampleBonus = tier.Bonus
			break
		}
	}

	injuryBonus := 0.0
	if in.InjuryDataIncorporated {
		injuryBonus = w.InjuryDataBonus
	}

	score := w.Base + quality*w.DataQualityWeight + sampleBonus + injuryBonus
	score = math.Max(0, math.Min(100, score))

	return ConfidenceResult{
		Score:           math.Round(score*10) / 10,
		DataQuality:     quality,
		SampleSizeBonus: sampleBonus,
		InjuryDataBonus: injuryBonus,
		MinGamesPlayed:  minGames,
	}
}
