package engine

import (
	"github.com/yourusername/game-predictor/internal/models"
)

// BuildStrengthProfile derives offensive, defensive and net ratings from a
// team's season record. A nil record means the team cannot be profiled.
func BuildStrengthProfile(record *models.TeamRecord, cal Calibration) (models.TeamStrengthProfile, error) {
	if record == nil {
		return models.TeamStrengthProfile{}, models.ErrMissingTeamData
	}

	pointsFor := record.PointsPerGame
	pointsAgainst := record.PointsAllowedPerGame

	// No games or no scoring data: fall back to a neutral ratio
	if record.GamesPlayed() == 0 || (pointsFor == 0 && pointsAgainst == 0) {
		pointsFor = cal.NeutralPointsPerGame
		pointsAgainst = cal.NeutralPointsPerGame
	}

	return models.TeamStrengthProfile{
		Abbreviation: record.Abbreviation,
		NetRating:    (pointsFor - pointsAgainst) * cal.NetRatingScale,
		OffRating:    pointsFor,
		DefRating:    pointsAgainst,
		GamesPlayed:  record.GamesPlayed(),
	}, nil
}
