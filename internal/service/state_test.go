package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/game-predictor/internal/models"
)

func TestMatchupStateTransitions(t *testing.T) {
	tests := []struct {
		from, to MatchupState
		allowed  bool
	}{
		{StatePending, StateProfilesBuilt, true},
		{StatePending, StateSkipped, true},
		{StatePending, StateClassified, false},
		{StateProfilesBuilt, StateProbabilityComputed, true},
		{StateProfilesBuilt, StateSkipped, false},
		{StateProbabilityComputed, StateClassified, true},
		{StateClassified, StatePersisted, true},
		{StateClassified, StateFailed, true},
		{StatePersisted, StateFailed, false},
		{StateSkipped, StateProfilesBuilt, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestMatchupStateTerminal(t *testing.T) {
	assert.True(t, StatePersisted.Terminal())
	assert.True(t, StateSkipped.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateClassified.Terminal())
	assert.False(t, StatePending.Terminal())
}

func TestMatchupFailWrapsStage(t *testing.T) {
	m := newMatchup(models.ScheduledGame{GameID: "42"})
	m.fail(StageProfiles, errors.New("bad record"))

	assert.Equal(t, StateFailed, m.state)
	var matchupErr *models.MatchupError
	assert.ErrorAs(t, m.err, &matchupErr)
	assert.Equal(t, StageProfiles, matchupErr.Stage)
	assert.Equal(t, "game 42: profiles: bad record", m.err.Error())
}

func TestMatchupIllegalTransitionPanics(t *testing.T) {
	m := newMatchup(models.ScheduledGame{GameID: "42"})
	assert.Panics(t, func() { m.advance(StatePersisted) })
}
