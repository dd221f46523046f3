package service

import (
	"fmt"

	"github.com/yourusername/game-predictor/internal/models"
)

// MatchupState is the lifecycle position of one game within a run
type MatchupState string

const (
	StatePending             MatchupState = "pending"
	StateProfilesBuilt       MatchupState = "profiles_built"
	StateProbabilityComputed MatchupState = "probability_computed"
	StateClassified          MatchupState = "classified"
	StatePersisted           MatchupState = "persisted"
	StateSkipped             MatchupState = "skipped"
	StateFailed              MatchupState = "failed"
)

// Stage names recorded on failures
const (
	StageProfiles    = "profiles"
	StageProbability = "probability"
	StageValidate    = "validate"
	StagePersist     = "persist"
)

var transitions = map[MatchupState][]MatchupState{
	StatePending:             {StateProfilesBuilt, StateSkipped, StateFailed},
	StateProfilesBuilt:       {StateProbabilityComputed, StateFailed},
	StateProbabilityComputed: {StateClassified, StateFailed},
	StateClassified:          {StatePersisted, StateFailed},
}

// Terminal reports whether no further transition is possible
func (s MatchupState) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether s may move to next
func (s MatchupState) CanTransition(next MatchupState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// matchup tracks one game through a run
type matchup struct {
	game       models.ScheduledGame
	state      MatchupState
	prediction *models.Prediction
	err        error
}

func newMatchup(game models.ScheduledGame) *matchup {
	return &matchup{game: game, state: StatePending}
}

func (m *matchup) advance(next MatchupState) {
	if !m.state.CanTransition(next) {
		panic(fmt.Sprintf("game %s: illegal transition %s -> %s", m.game.GameID, m.state, next))
	}
	m.state = next
}

func (m *matchup) skip(err error) {
	m.advance(StateSkipped)
	m.err = err
}

func (m *matchup) fail(stage string, err error) {
	m.advance(StateFailed)
	m.err = &models.MatchupError{GameID: m.game.GameID, Stage: stage, Err: err}
}
