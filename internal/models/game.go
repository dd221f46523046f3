package models

import (
	"time"
)

// GameDateLayout is the layout used for game dates everywhere in the system
const GameDateLayout = "2006-01-02"

// Side identifies one team in a matchup
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// ScheduledGame is the per-game scheduling metadata from the stats provider
type ScheduledGame struct {
	GameID           string     `json:"game_id" validate:"required"`
	GameDate         time.Time  `json:"game_date" validate:"required"`
	TipOff           *time.Time `json:"tip_off"`
	HomeTeam         string     `json:"home_team" validate:"required"`
	AwayTeam         string     `json:"away_team" validate:"required,nefield=HomeTeam"`
	HomeOnBackToBack bool       `json:"home_on_back_to_back"`
	AwayOnBackToBack bool       `json:"away_on_back_to_back"`
	HomeLastGameDate *time.Time `json:"home_last_game_date"`
	AwayLastGameDate *time.Time `json:"away_last_game_date"`
	HomeMoneyline    *int       `json:"home_moneyline"`
	AwayMoneyline    *int       `json:"away_moneyline"`
}

// HasMarket reports whether either side carries a market price
func (g *ScheduledGame) HasMarket() bool {
	return g.HomeMoneyline != nil || g.AwayMoneyline != nil
}

// GameTime formats the tip-off as HH:MM UTC, empty when unknown
func (g *ScheduledGame) GameTime() string {
	if g.TipOff == nil {
		return ""
	}
	return g.TipOff.UTC().Format("15:04")
}

// MatchupContext captures the situational inputs for one side of a game.
// It is built once per evaluation and treated as a value afterwards.
type MatchupContext struct {
	IsHome       bool    `json:"is_home"`
	OnBackToBack bool    `json:"on_back_to_back"`
	RestDays     int     `json:"rest_days"`
	InjuryImpact float64 `json:"injury_impact"`
}
