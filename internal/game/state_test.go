package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/poker"
)

func TestNextSeat(t *testing.T) {
	t.Parallel()

	s := newTestState(100, 100, 100, 100)
	s.Players[1].setStatus(StatusFolded)
	s.Players[2].setStatus(StatusAllIn)

	assert.Equal(t, 3, s.NextSeat(0, isActive))
	assert.Equal(t, 0, s.NextSeat(3, isActive), "wraps around")
	assert.Equal(t, 0, s.NextSeat(-1, isActive))
	assert.Equal(t, 3, s.NextSeat(0, func(p *Player) bool { return p.ID() == "p4" }))
	assert.Equal(t, -1, s.NextSeat(0, func(*Player) bool { return false }))
	assert.Equal(t, 0, s.NextSeat(0, func(p *Player) bool { return p.ID() == "p1" }), "a full lap returns to the start seat")

	assert.Equal(t, 2, s.Count(StatusActive))
	assert.Equal(t, 3, s.Count(StatusActive, StatusAllIn))
}

func TestPotTracksContributions(t *testing.T) {
	t.Parallel()

	pot := NewPot()
	pot.Add("a", 20)
	pot.Add("b", 50)
	pot.Add("a", 30)
	pot.Add("c", 0)
	pot.Add("c", -5)

	assert.Equal(t, 100, pot.Total())
	assert.Equal(t, 50, pot.Contribution("a"))
	assert.Equal(t, map[string]int{"a": 50, "b": 50}, pot.Contributions())

	copied := pot.Contributions()
	copied["a"] = 0
	assert.Equal(t, 50, pot.Contribution("a"), "Contributions returns a copy")

	pot.Reset()
	pot.Reset()
	assert.Zero(t, pot.Total())
	assert.Empty(t, pot.Contributions())
}

func TestPlayerWagers(t *testing.T) {
	t.Parallel()

	p := NewPlayer("a", "Alice", 100)
	assert.Equal(t, StatusActive, p.Status())
	assert.Equal(t, "Alice", p.Name())

	require.NoError(t, p.wager(40))
	assert.Equal(t, 60, p.Chips())
	assert.Equal(t, 40, p.CurrentBet())

	assert.ErrorIs(t, p.wager(61), ErrInsufficientChips)
	assert.ErrorIs(t, p.wager(-1), ErrInvalidAction)
	assert.Equal(t, 60, p.Chips(), "failed wagers change nothing")

	p.resetBet()
	assert.Zero(t, p.CurrentBet())

	for _, c := range poker.MustParseCards("As Kd") {
		require.NoError(t, p.addHoleCard(c))
	}
	assert.ErrorIs(t, p.addHoleCard(poker.MustParseCards("2c")[0]), ErrTooManyHoleCards)

	hole := p.HoleCards()
	hole[0] = poker.MustParseCards("3c")[0]
	assert.Equal(t, poker.MustParseCards("As Kd"), p.HoleCards(), "HoleCards returns a copy")
}

func TestPhaseText(t *testing.T) {
	t.Parallel()

	for _, phase := range []Phase{PhasePreGame, PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver, PhaseShowdown, PhaseHandEnded} {
		text, err := phase.MarshalText()
		require.NoError(t, err)
		var back Phase
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, phase, back)
	}
	assert.Equal(t, "PRE_FLOP", PhasePreFlop.String())
	assert.True(t, PhaseRiver.Betting())
	assert.False(t, PhaseShowdown.Betting())
	assert.True(t, PhaseHandEnded.Idle())
}

func TestParseActionType(t *testing.T) {
	t.Parallel()

	tests := map[string]ActionType{
		"fold":   ActionFold,
		"CHECK":  ActionCheck,
		" call ": ActionCall,
		"raise":  ActionRaise,
		"allin":  ActionAllIn,
		"all-in": ActionAllIn,
		"all_in": ActionAllIn,
	}
	for in, want := range tests {
		got, err := ParseActionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseActionType("bet")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
