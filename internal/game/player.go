package game

import (
	"fmt"

	"github.com/lox/holdem-engine/poker"
)

// Behavior receives callbacks for a seated player. Implementations include
// remote relays, bots and NopBehavior. Callbacks run synchronously while the
// game lock is held and must not call back into the Game.
type Behavior interface {
	OnLeave()
	OnHandEnded(payout int)
}

// NopBehavior ignores every callback.
type NopBehavior struct{}

func (NopBehavior) OnLeave()        {}
func (NopBehavior) OnHandEnded(int) {}

// BehaviorFuncs adapts plain functions to Behavior. Nil fields are skipped.
type BehaviorFuncs struct {
	Leave     func()
	HandEnded func(payout int)
}

func (b BehaviorFuncs) OnLeave() {
	if b.Leave != nil {
		b.Leave()
	}
}

func (b BehaviorFuncs) OnHandEnded(payout int) {
	if b.HandEnded != nil {
		b.HandEnded(payout)
	}
}

// Player is a seat at the table. Stack, bet, status and hole cards are only
// mutated by the engine while it holds the game lock; other code reads them
// from event callbacks or through Game.Snapshot.
type Player struct {
	id       string
	name     string
	chips    int
	bet      int
	status   PlayerStatus
	hole     []poker.Card
	behavior Behavior
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithBehavior attaches callbacks to the player.
func WithBehavior(b Behavior) PlayerOption {
	return func(p *Player) {
		if b != nil {
			p.behavior = b
		}
	}
}

// NewPlayer creates a player with a starting stack. Negative stacks are
// clamped to zero.
func NewPlayer(id, name string, chips int, opts ...PlayerOption) *Player {
	p := &Player{
		id:       id,
		name:     name,
		chips:    max(chips, 0),
		status:   StatusActive,
		hole:     make([]poker.Card, 0, 2),
		behavior: NopBehavior{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) ID() string           { return p.id }
func (p *Player) Name() string         { return p.name }
func (p *Player) Chips() int           { return p.chips }
func (p *Player) CurrentBet() int      { return p.bet }
func (p *Player) Status() PlayerStatus { return p.status }

// HoleCards returns a copy of the player's hole cards, or nil.
func (p *Player) HoleCards() []poker.Card {
	if len(p.hole) == 0 {
		return nil
	}
	out := make([]poker.Card, len(p.hole))
	copy(out, p.hole)
	return out
}

func (p *Player) String() string {
	return fmt.Sprintf("%s(%s)", p.name, p.id)
}

// wager moves amount from the stack to the current street bet.
func (p *Player) wager(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative bet %d", ErrInvalidAction, amount)
	}
	if amount > p.chips {
		return fmt.Errorf("%w: bet %d with stack %d", ErrInsufficientChips, amount, p.chips)
	}
	p.chips -= amount
	p.bet += amount
	return nil
}

func (p *Player) win(amount int) {
	p.chips += amount
}

func (p *Player) addHoleCard(c poker.Card) error {
	if len(p.hole) >= 2 {
		return fmt.Errorf("%w: %s already holds %d cards", ErrTooManyHoleCards, p.id, len(p.hole))
	}
	p.hole = append(p.hole, c)
	return nil
}

func (p *Player) clearHoleCards() {
	p.hole = p.hole[:0]
}

func (p *Player) resetBet() {
	p.bet = 0
}

func (p *Player) setStatus(s PlayerStatus) {
	p.status = s
}
