package game

import (
	"fmt"
	"slices"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/poker"
)

// Board with no straight or flush help for the hole cards used below.
var dryBoard = poker.MustParseCards("2c 7d 9h Js 3s")

func newTestCalculator(t *testing.T, rake RakeStrategy) *PayoutCalculator {
	return NewPayoutCalculator(poker.ReferenceEvaluator{}, rake, NewEventBus(), quartz.NewMock(t))
}

type seat struct {
	hole   string
	paid   int
	status PlayerStatus
}

func seatPlayers(t *testing.T, seats ...seat) ([]*Player, map[string]int) {
	t.Helper()
	players := make([]*Player, len(seats))
	contributions := make(map[string]int)
	for i, st := range seats {
		id := fmt.Sprintf("p%d", i+1)
		players[i] = NewPlayer(id, id, 0)
		players[i].setStatus(st.status)
		setHole(t, players[i], st.hole)
		if st.paid > 0 {
			contributions[id] = st.paid
		}
	}
	return players, contributions
}

func TestCalculatePayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		seats    []seat
		rake     RakeStrategy
		expected map[string]int
		winners  []string
		wantRake int
	}{
		{
			name: "single winner takes everything",
			seats: []seat{
				{"As Ad", 100, StatusActive},
				{"Ks Kd", 100, StatusActive},
			},
			expected: map[string]int{"p1": 200},
			winners:  []string{"p1"},
		},
		{
			name: "short all-in wins the main pot only",
			seats: []seat{
				{"As Ad", 100, StatusAllIn},
				{"Ks Kd", 200, StatusAllIn},
				{"Qs Qd", 200, StatusActive},
			},
			expected: map[string]int{"p1": 300, "p2": 200},
			winners:  []string{"p1", "p2"},
		},
		{
			name: "folded chips fund the pot but cannot win",
			seats: []seat{
				{"As Ad", 100, StatusFolded},
				{"Ks Kd", 100, StatusActive},
				{"Qs Qd", 100, StatusActive},
			},
			expected: map[string]int{"p2": 300},
			winners:  []string{"p2"},
		},
		{
			name: "layer nobody at showdown reached goes to the best hand",
			seats: []seat{
				{"As Ad", 300, StatusFolded},
				{"Ks Kd", 100, StatusAllIn},
				{"Qs Qd", 100, StatusAllIn},
			},
			expected: map[string]int{"p2": 500},
			winners:  []string{"p2"},
		},
		{
			name: "odd chip goes to the first winner in seat order",
			seats: []seat{
				{"Qh Qc", 1, StatusActive},
				{"Qs Qd", 1, StatusActive},
				{"4c 5d", 1, StatusActive},
			},
			expected: map[string]int{"p1": 2, "p2": 1},
			winners:  []string{"p1", "p2"},
		},
		{
			name: "rake comes off the lowest layer first",
			seats: []seat{
				{"As Ad", 100, StatusAllIn},
				{"Ks Kd", 500, StatusActive},
				{"Qs Qd", 500, StatusActive},
			},
			rake:     mustRake(t, 0.05, 0),
			expected: map[string]int{"p1": 245, "p2": 800},
			winners:  []string{"p1", "p2"},
			wantRake: 55,
		},
		{
			name: "rake cap",
			seats: []seat{
				{"As Ad", 500, StatusActive},
				{"Ks Kd", 500, StatusActive},
			},
			rake:     mustRake(t, 0.05, 20),
			expected: map[string]int{"p1": 980},
			winners:  []string{"p1"},
			wantRake: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			players, contributions := seatPlayers(t, tt.seats...)
			calc := newTestCalculator(t, tt.rake)

			out, err := calc.Calculate(players, dryBoard, contributions)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Payouts)
			assert.Equal(t, tt.winners, out.Winners)
			assert.Equal(t, tt.wantRake, out.Rake)
		})
	}
}

func mustRake(t *testing.T, percent float64, limit int) RakeStrategy {
	t.Helper()
	r, err := NewPercentageRake(percent, limit)
	require.NoError(t, err)
	return r
}

func TestCalculateRecordsShowdownHands(t *testing.T) {
	t.Parallel()

	players, contributions := seatPlayers(t,
		seat{"As Ad", 50, StatusActive},
		seat{"Ks Kd", 50, StatusFolded},
	)
	out, err := newTestCalculator(t, nil).Calculate(players, dryBoard, contributions)
	require.NoError(t, err)

	require.Contains(t, out.Hands, "p1")
	assert.NotContains(t, out.Hands, "p2", "folded hands are not evaluated")
	assert.Equal(t, poker.OnePair, out.Hands["p1"].Category)
}

func TestCalculateEmptyPot(t *testing.T) {
	t.Parallel()

	players, _ := seatPlayers(t, seat{"As Ad", 0, StatusActive}, seat{"Ks Kd", 0, StatusActive})
	out, err := newTestCalculator(t, nil).Calculate(players, dryBoard, map[string]int{})
	require.NoError(t, err)
	assert.Empty(t, out.Payouts)
	assert.Empty(t, out.Winners)
}

func TestCalculateNeedsAContender(t *testing.T) {
	t.Parallel()

	players, contributions := seatPlayers(t, seat{"As Ad", 50, StatusFolded}, seat{"Ks Kd", 50, StatusLeft})
	_, err := newTestCalculator(t, nil).Calculate(players, dryBoard, contributions)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

// Every chip contributed is either paid out or raked, whatever the mix of
// stacks, folds and hands.
func TestCalculateConservesChips(t *testing.T) {
	t.Parallel()

	rng := randutil.New(7)
	calc := newTestCalculator(t, mustRake(t, 0.03, 15))

	for round := range 500 {
		deck := poker.NewDeck(rng)
		board := make([]poker.Card, 5)
		for i := range board {
			board[i], _ = deck.Deal()
		}

		n := 2 + rng.IntN(5)
		players := make([]*Player, n)
		contributions := make(map[string]int)
		total := 0
		for i := range players {
			id := fmt.Sprintf("p%d", i+1)
			p := NewPlayer(id, id, 0)
			for range 2 {
				c, _ := deck.Deal()
				require.NoError(t, p.addHoleCard(c))
			}
			if i > 0 && rng.IntN(3) == 0 {
				p.setStatus(StatusFolded)
			}
			paid := 1 + rng.IntN(400)
			contributions[id] = paid
			total += paid
			players[i] = p
		}

		out, err := calc.Calculate(players, board, contributions)
		require.NoError(t, err)

		paid := out.Rake
		for _, p := range players {
			amount := out.Payouts[p.id]
			if !p.status.InHand() {
				require.Zero(t, amount, "round %d: folded %s was paid", round, p.id)
			}
			paid += amount
		}
		require.Equal(t, total, paid, "round %d", round)
	}
}

func TestSettleCreditsWinners(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	rec := &recorder{}
	bus.Subscribe(rec)
	calc := NewPayoutCalculator(poker.LookupEvaluator{}, mustRake(t, 0.1, 0), bus, quartz.NewMock(t))

	s := newTestState(1000, 1000)
	s.Board = dryBoard
	setHole(t, s.Players[0], "As Ad")
	setHole(t, s.Players[1], "Ks Kd")
	require.NoError(t, commit(s.Players[0], 100, s))
	require.NoError(t, commit(s.Players[1], 100, s))

	out, err := calc.Settle(s)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Rake)
	assert.Equal(t, 1080, s.Players[0].Chips())
	assert.Equal(t, 900, s.Players[1].Chips())
	assert.Equal(t, 200, s.Pot.Total(), "settling leaves the pot for the caller")

	rake := eventsOf[RakeCollectedEvent](rec)
	require.Len(t, rake, 1)
	assert.Equal(t, 20, rake[0].Amount)
}

// peelPayouts settles a pot the slow way: repeatedly take the smallest
// remaining contribution from everyone still owed, award that pot, repeat.
func peelPayouts(t *testing.T, players []*Player, board []poker.Card, contributions map[string]int, rake int) map[string]int {
	t.Helper()
	hands := make(map[string]poker.HandResult)
	var live []*Player
	for _, p := range players {
		if !p.status.InHand() {
			continue
		}
		hand, err := poker.ReferenceEvaluator{}.Evaluate(p.hole, board)
		require.NoError(t, err)
		hands[p.id] = hand
		live = append(live, p)
	}

	best := func(candidates []*Player) []*Player {
		var top []*Player
		for _, p := range candidates {
			switch {
			case len(top) == 0 || hands[p.id].Compare(hands[top[0].id]) > 0:
				top = []*Player{p}
			case hands[p.id].Compare(hands[top[0].id]) == 0:
				top = append(top, p)
			}
		}
		return top
	}

	remaining := make(map[string]int, len(contributions))
	for id, amount := range contributions {
		remaining[id] = amount
	}
	payouts := make(map[string]int)
	for {
		smallest := 0
		for _, amount := range remaining {
			if amount > 0 && (smallest == 0 || amount < smallest) {
				smallest = amount
			}
		}
		if smallest == 0 {
			return payouts
		}

		var eligible []*Player
		for _, p := range live {
			if remaining[p.id] > 0 {
				eligible = append(eligible, p)
			}
		}
		pot := 0
		for id, amount := range remaining {
			if amount > 0 {
				pot += smallest
				remaining[id] = amount - smallest
			}
		}
		taken := min(rake, pot)
		rake -= taken
		pot -= taken
		if pot == 0 {
			continue
		}

		winners := best(eligible)
		if len(winners) == 0 {
			winners = best(live)
		}
		slices.SortFunc(winners, func(a, b *Player) int {
			return slices.Index(players, a) - slices.Index(players, b)
		})
		for i, w := range winners {
			payouts[w.id] += pot / len(winners)
			if i < pot%len(winners) {
				payouts[w.id]++
			}
		}
	}
}

func TestCalculateMatchesPeeling(t *testing.T) {
	t.Parallel()

	rng := randutil.New(11)
	calc := newTestCalculator(t, mustRake(t, 0.05, 20))
	// Broadway on the board: every player ties unless the hole cards do better.
	broadway := poker.MustParseCards("Ts Js Qd Kc Ah")

	for round := range 2000 {
		deck := poker.NewDeck(rng)
		var board []poker.Card
		if round%3 == 0 {
			board = broadway
		} else {
			for range 5 {
				c, _ := deck.Deal()
				board = append(board, c)
			}
		}
		deal := func() poker.Card {
			for {
				c, _ := deck.Deal()
				if !slices.Contains(board, c) {
					return c
				}
			}
		}

		n := 2 + rng.IntN(5)
		players := make([]*Player, n)
		contributions := make(map[string]int)
		total := 0
		for i := range players {
			id := fmt.Sprintf("p%d", i+1)
			p := NewPlayer(id, id, 0)
			require.NoError(t, p.addHoleCard(deal()))
			require.NoError(t, p.addHoleCard(deal()))
			if rng.IntN(3) == 0 {
				p.setStatus(StatusFolded)
			}
			// Coarse amounts so several players often share a level.
			paid := 25 * rng.IntN(9)
			if paid > 0 {
				contributions[id] = paid
				total += paid
			}
			players[i] = p
		}
		if total == 0 || !slices.ContainsFunc(players, func(p *Player) bool { return p.status.InHand() }) {
			continue
		}

		out, err := calc.Calculate(players, board, contributions)
		require.NoError(t, err)
		want := peelPayouts(t, players, board, contributions, out.Rake)
		for _, p := range players {
			require.Equal(t, want[p.id], out.Payouts[p.id], "round %d: %s", round, p.id)
		}
	}
}
