package models

// TeamRecord represents a team's season-to-date record from the stats provider
type TeamRecord struct {
	Abbreviation         string  `json:"abbreviation" validate:"required"`
	Name                 string  `json:"name"`
	Wins                 int     `json:"wins" validate:"gte=0"`
	Losses               int     `json:"losses" validate:"gte=0"`
	PointsPerGame        float64 `json:"points_per_game" validate:"gte=0"`
	PointsAllowedPerGame float64 `json:"points_allowed_per_game" validate:"gte=0"`
}

// GamesPlayed returns the number of decided games in the record
func (t *TeamRecord) GamesPlayed() int {
	return t.Wins + t.Losses
}

// WinPercentage returns wins over games played, or 0 with no games
func (t *TeamRecord) WinPercentage() float64 {
	gp := t.GamesPlayed()
	if gp == 0 {
		return 0
	}
	return float64(t.Wins) / float64(gp)
}

// TeamStrengthProfile is the per-run strength snapshot of one team.
// It is never persisted on its own.
type TeamStrengthProfile struct {
	Abbreviation string  `json:"abbreviation"`
	NetRating    float64 `json:"net_rating"`
	OffRating    float64 `json:"off_rating"`
	DefRating    float64 `json:"def_rating"`
	GamesPlayed  int     `json:"games_played"`
}

// SupplementaryStats holds optional pace and defensive figures for a team
type SupplementaryStats struct {
	Abbreviation    string  `db:"team_abbreviation" json:"team_abbreviation"`
	Pace            float64 `db:"pace" json:"pace"`
	DefensiveRating float64 `db:"defensive_rating" json:"defensive_rating"`
}

// Complete reports whether both pace and defensive rating are present
func (s *SupplementaryStats) Complete() bool {
	return s != nil && s.Pace > 0 && s.DefensiveRating > 0
}
