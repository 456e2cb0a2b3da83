package game

import (
	"fmt"
	"slices"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/poker"
)

// recorder keeps every event it receives.
type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func eventsOf[T Event](r *recorder) []T {
	var out []T
	for _, e := range r.events {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// newTestState seats p1..pN with the given stacks on a stacked deck.
func newTestState(chips ...int) *GameState {
	s := NewGameState("test", 10, 20, poker.NewStackedDeck())
	for i, c := range chips {
		id := fmt.Sprintf("p%d", i+1)
		s.Players = append(s.Players, NewPlayer(id, id, c))
	}
	return s
}

func testConfig() Config {
	return Config{SmallBlind: 10, BigBlind: 20, MaxPlayers: 10}
}

// newTestGame builds a game dealing deck (top cards first) on a mock clock
// and seats players in order.
func newTestGame(t *testing.T, cfg Config, deck string, players ...*Player) (*Game, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	g := New(cfg,
		WithID("test"),
		WithDeck(poker.NewStackedDeck(poker.MustParseCards(deck)...)),
		WithClock(clock),
		WithEvaluator(poker.ReferenceEvaluator{}))
	for _, p := range players {
		require.NoError(t, g.Join(p))
	}
	return g, clock
}

func mustAct(t *testing.T, g *Game, id string, action ActionType, amount int) {
	t.Helper()
	require.NoError(t, g.PerformAction(id, action, amount), "%s %s %d", id, action, amount)
}

func currentID(snap Snapshot) string {
	if snap.Action < 0 || snap.Action >= len(snap.Players) {
		return ""
	}
	return snap.Players[snap.Action].ID
}

func chipsOf(t *testing.T, snap Snapshot, id string) int {
	t.Helper()
	p, ok := snap.Player(id)
	require.True(t, ok, "player %s not seated", id)
	return p.Chips
}

func setHole(t *testing.T, p *Player, cards string) {
	t.Helper()
	p.clearHoleCards()
	for _, c := range poker.MustParseCards(cards) {
		require.NoError(t, p.addHoleCard(c))
	}
}

func ids(players []PlayerSnapshot) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return slices.Clip(out)
}
