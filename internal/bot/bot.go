// Package bot contains simple table strategies used by the simulator and for
// filling seats in tests. Bots see only what a player at the table could
// see: their own cards, the board, stacks and the legal actions.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sort"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/poker"
)

// Decision is a bot's chosen action. Amount is a raise total and is ignored
// for other actions.
type Decision struct {
	Action    game.ActionType
	Amount    int
	Reasoning string
}

// Bot picks an action for the acting player.
type Bot interface {
	Decide(v View) Decision
}

// View is the acting player's picture of the table.
type View struct {
	Phase    game.Phase
	Hole     []poker.Card
	Board    []poker.Card
	Chips    int
	Bet      int
	Pot      int
	BigBlind int
	ToCall   int
	MinRaise int
	MaxRaise int
	Allowed  []game.ActionType
}

// NewView builds the view for the player turn describes.
func NewView(snap game.Snapshot, turn game.PlayerTurnEvent) View {
	v := View{
		Phase:    snap.Phase,
		Board:    snap.Board,
		Pot:      snap.Pot.Total,
		BigBlind: snap.BigBlind,
		ToCall:   turn.ToCall,
		MinRaise: turn.MinRaise,
		MaxRaise: turn.MaxRaise,
		Allowed:  turn.Allowed,
	}
	if p, ok := snap.Player(turn.PlayerID); ok {
		v.Hole = p.HoleCards
		v.Chips = p.Chips
		v.Bet = p.Bet
	}
	return v
}

// Can reports whether action is legal.
func (v View) Can(action game.ActionType) bool {
	return slices.Contains(v.Allowed, action)
}

// CanRaise reports whether a full raise fits in the stack and the limit.
func (v View) CanRaise() bool {
	return v.Can(game.ActionRaise) && v.MinRaise <= v.MaxRaise
}

// StackInBigBlinds is the stack behind in big blinds.
func (v View) StackInBigBlinds() float64 {
	if v.BigBlind == 0 {
		return 0
	}
	return float64(v.Chips) / float64(v.BigBlind)
}

// Passive checks when free and otherwise calls, falling back to fold.
func (v View) Passive(reason string) Decision {
	switch {
	case v.Can(game.ActionCheck):
		return Decision{Action: game.ActionCheck, Reasoning: reason}
	case v.Can(game.ActionCall):
		return Decision{Action: game.ActionCall, Reasoning: reason}
	}
	return v.Fold(reason)
}

// Fold checks when free, otherwise folds.
func (v View) Fold(reason string) Decision {
	if v.Can(game.ActionCheck) {
		return Decision{Action: game.ActionCheck, Reasoning: reason}
	}
	return Decision{Action: game.ActionFold, Reasoning: reason}
}

// RaiseTo raises to amount clamped into the legal range. When no full raise
// is possible it shoves if allowed, otherwise plays passively.
func (v View) RaiseTo(amount int, reason string) Decision {
	if v.CanRaise() {
		amount = max(v.MinRaise, min(amount, v.MaxRaise))
		return Decision{Action: game.ActionRaise, Amount: amount, Reasoning: reason}
	}
	return v.Shove(reason)
}

// Shove goes all in if allowed. Under a pot limit that forbids it, it
// raises the maximum instead.
func (v View) Shove(reason string) Decision {
	if v.Can(game.ActionAllIn) {
		return Decision{Action: game.ActionAllIn, Reasoning: reason}
	}
	if v.CanRaise() {
		return Decision{Action: game.ActionRaise, Amount: v.MaxRaise, Reasoning: reason}
	}
	return v.Passive(reason)
}

// Factory builds a bot from a random source.
type Factory func(rng *rand.Rand) Bot

var strategies = map[string]Factory{
	"call":       func(*rand.Rand) Bot { return CallBot{} },
	"fold":       func(*rand.Rand) Bot { return FoldBot{} },
	"random":     func(rng *rand.Rand) Bot { return NewRandBot(rng) },
	"aggressive": func(rng *rand.Rand) Bot { return NewManiacBot(rng) },
	"chart":      func(*rand.Rand) Bot { return ChartBot{} },
}

// Strategies lists the registered strategy names.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsStrategy reports whether name is registered.
func IsStrategy(name string) bool {
	_, ok := strategies[name]
	return ok
}

// New builds the named strategy.
func New(strategy string, rng *rand.Rand) (Bot, error) {
	f, ok := strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy %q", strategy)
	}
	return f(rng), nil
}
