package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		chips    int
		bet      int
		highest  int
		expected []ActionType
	}{
		{"nothing owed", 1000, 20, 20, []ActionType{ActionFold, ActionCheck, ActionRaise, ActionAllIn}},
		{"facing a bet", 1000, 0, 20, []ActionType{ActionFold, ActionCall, ActionRaise, ActionAllIn}},
		{"stack equals call", 20, 0, 20, []ActionType{ActionFold, ActionCall, ActionAllIn}},
		{"stack short of call", 15, 0, 20, []ActionType{ActionFold, ActionCall, ActionAllIn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestState(tt.chips+tt.bet, 1000)
			s.Phase = PhaseFlop
			require.NoError(t, commit(s.Players[0], tt.bet, s))
			require.NoError(t, commit(s.Players[1], tt.highest, s))
			s.Action = 0

			rules := NewRuleEngine(nil)
			assert.Equal(t, tt.expected, rules.AllowedActions(s.Players[0], s))
		})
	}
}

func TestAllowedActionsOffTurn(t *testing.T) {
	t.Parallel()

	rules := NewRuleEngine(NoLimit{})
	s := newTestState(1000, 1000)
	s.Action = 0

	assert.Nil(t, rules.AllowedActions(s.Players[0], s), "no betting in PRE_GAME")

	s.Phase = PhasePreFlop
	assert.NotEmpty(t, rules.AllowedActions(s.Players[0], s))
	assert.Nil(t, rules.AllowedActions(s.Players[1], s), "not bob's turn")

	s.Players[0].setStatus(StatusAllIn)
	assert.Nil(t, rules.AllowedActions(s.Players[0], s), "all-in players cannot act")
}

func TestValidateAction(t *testing.T) {
	t.Parallel()

	setup := func() (*GameState, *RuleEngine) {
		s := newTestState(1000, 1000, 1000)
		s.Phase = PhasePreFlop
		_ = commit(s.Players[1], 10, s)
		_ = commit(s.Players[2], 20, s)
		s.Action = 0
		return s, NewRuleEngine(nil)
	}

	t.Run("turn is checked before phase", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		s.Phase = PhaseHandEnded
		err := rules.ValidateAction(s.Players[1], ActionCall, 0, 20, s)
		assert.ErrorIs(t, err, ErrNotYourTurn)

		err = rules.ValidateAction(s.Players[0], ActionCall, 0, 20, s)
		assert.ErrorIs(t, err, ErrHandIsOver, "the seat on the pointer learns the hand is over")
	})

	t.Run("nothing to act on before the first hand", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		s.Phase = PhasePreGame
		err := rules.ValidateAction(s.Players[0], ActionCall, 0, 20, s)
		assert.ErrorIs(t, err, ErrHandIsOver)
		err = rules.ValidateAction(s.Players[1], ActionCall, 0, 20, s)
		assert.ErrorIs(t, err, ErrHandIsOver)
	})

	t.Run("not your turn", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		err := rules.ValidateAction(s.Players[1], ActionCall, 0, 20, s)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})

	t.Run("folded player cannot act", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		s.Players[0].setStatus(StatusFolded)
		err := rules.ValidateAction(s.Players[0], ActionCall, 0, 20, s)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})

	t.Run("check facing a bet", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		err := rules.ValidateAction(s.Players[0], ActionCheck, 0, 20, s)
		assert.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("raise sizing", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		assert.NoError(t, rules.ValidateAction(s.Players[0], ActionRaise, 40, 20, s))
		assert.NoError(t, rules.ValidateAction(s.Players[0], ActionRaise, 1000, 20, s))
		assert.ErrorIs(t, rules.ValidateAction(s.Players[0], ActionRaise, 39, 20, s), ErrInvalidAction)
		assert.ErrorIs(t, rules.ValidateAction(s.Players[0], ActionRaise, 1001, 20, s), ErrInsufficientChips)
	})

	t.Run("blinds are not player actions", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		assert.ErrorIs(t, rules.ValidateAction(s.Players[0], ActionBigBlind, 20, 20, s), ErrInvalidAction)
	})

	t.Run("fold call and all-in are always valid on turn", func(t *testing.T) {
		t.Parallel()
		s, rules := setup()
		for _, a := range []ActionType{ActionFold, ActionCall, ActionAllIn} {
			assert.NoError(t, rules.ValidateAction(s.Players[0], a, 0, 20, s), a.String())
		}
	})
}

func TestIsRoundComplete(t *testing.T) {
	t.Parallel()

	s := newTestState(1000, 1000, 1000)
	s.Phase = PhasePreFlop
	rules := NewRuleEngine(nil)
	for _, p := range s.Players {
		require.NoError(t, commit(p, 20, s))
	}

	assert.False(t, rules.IsRoundComplete(s), "matched bets without actions leave the big blind option")

	s.MarkActed("p1")
	s.MarkActed("p2")
	assert.False(t, rules.IsRoundComplete(s))

	s.MarkActed("p3")
	assert.True(t, rules.IsRoundComplete(s))

	require.NoError(t, commit(s.Players[0], 40, s))
	assert.False(t, rules.IsRoundComplete(s), "a raise reopens the street")

	s.Players[1].setStatus(StatusFolded)
	s.Players[2].setStatus(StatusAllIn)
	assert.True(t, rules.IsRoundComplete(s), "only active players need to match")
}

func TestPotLimit(t *testing.T) {
	t.Parallel()

	s := newTestState(1000, 1000, 1000)
	s.Phase = PhasePreFlop
	require.NoError(t, commit(s.Players[1], 10, s))
	require.NoError(t, commit(s.Players[2], 20, s))
	s.Action = 0

	rule := PotLimit{}
	rules := NewRuleEngine(rule)
	assert.Equal(t, "pot-limit", rules.Rule().Name())

	// 20 highest + 30 pot + 20 to call.
	assert.Equal(t, 70, rule.MaxRaise(s.Players[0], 20, s))
	assert.NoError(t, rules.ValidateAction(s.Players[0], ActionRaise, 70, 20, s))
	assert.ErrorIs(t, rules.ValidateAction(s.Players[0], ActionRaise, 80, 20, s), ErrInvalidAction)
	assert.ErrorIs(t, rules.ValidateAction(s.Players[0], ActionRaise, 30, 20, s), ErrInvalidAction)

	assert.NotContains(t, rules.AllowedActions(s.Players[0], s), ActionAllIn)
	assert.ErrorIs(t, rules.ValidateAction(s.Players[0], ActionAllIn, 0, 20, s), ErrInvalidAction)

	short := newTestState(50, 1000, 1000)
	short.Phase = PhasePreFlop
	require.NoError(t, commit(short.Players[1], 10, short))
	require.NoError(t, commit(short.Players[2], 20, short))
	assert.Contains(t, rules.AllowedActions(short.Players[0], short), ActionAllIn, "stack under the pot limit may shove")
}

func TestMinRaise(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 40, MinRaise(20, 20))
	assert.Equal(t, 120, MinRaise(100, 20))
}
