package game

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/poker"
)

// Config holds the table settings a game is built from. Values are expected
// to be validated by the caller (see internal/config).
type Config struct {
	SmallBlind    int
	BigBlind      int
	MaxPlayers    int
	ActionTimeout time.Duration
}

// Repository stores snapshots. A game with a repository saves after every
// command that changes state.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, gameID string) (Snapshot, error)
}

// Option configures a Game.
type Option func(*options)

type options struct {
	id        string
	evaluator poker.Evaluator
	deck      Deck
	rng       *rand.Rand
	clock     quartz.Clock
	logger    *log.Logger
	rake      RakeStrategy
	rule      BettingRule
	repo      Repository
}

// WithID sets the game id instead of generating one.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithEvaluator sets the showdown evaluator. The default is
// poker.LookupEvaluator.
func WithEvaluator(ev poker.Evaluator) Option {
	return func(o *options) { o.evaluator = ev }
}

// WithDeck deals from deck instead of a freshly shuffled one.
func WithDeck(deck Deck) Option {
	return func(o *options) { o.deck = deck }
}

// WithRNG shuffles the default deck with rng.
func WithRNG(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithClock sets the clock used for event timestamps and timeouts.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets the logger. Games are silent by default.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRake takes rake at showdown.
func WithRake(rake RakeStrategy) Option {
	return func(o *options) { o.rake = rake }
}

// WithBettingRule sets the betting variant. The default is NoLimit.
func WithBettingRule(rule BettingRule) Option {
	return func(o *options) { o.rule = rule }
}

// WithRepository saves a snapshot after every state change. Save failures
// are logged, not returned.
func WithRepository(repo Repository) Option {
	return func(o *options) { o.repo = repo }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.evaluator == nil {
		o.evaluator = poker.LookupEvaluator{}
	}
	if o.rng == nil {
		o.rng = randutil.New(randutil.Seed(0))
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	}
	return o
}

// Game is one table. It owns its state and serialises every command behind a
// single mutex; events are published synchronously while the lock is held.
type Game struct {
	mu sync.Mutex

	state     *GameState
	bus       *EventBus
	rules     *RuleEngine
	actions   *ActionHandler
	payouts   *PayoutCalculator
	lifecycle *RoundLifecycle
	timeouts  *TimeoutManager
	table     *TableManager
	repo      Repository
	logger    *log.Logger
}

// New creates an empty table in PRE_GAME.
func New(cfg Config, opts ...Option) *Game {
	o := buildOptions(opts)
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.deck == nil {
		o.deck = poker.NewDeck(o.rng)
	}
	return assemble(cfg, NewGameState(o.id, cfg.SmallBlind, cfg.BigBlind, o.deck), o)
}

// Restore rebuilds a game from a snapshot. Players come back with no
// behaviour attached. The remaining deck is restored in order unless
// WithDeck is given; WithID is ignored.
func Restore(cfg Config, snap Snapshot, opts ...Option) (*Game, error) {
	o := buildOptions(opts)
	if o.deck == nil {
		deck, err := poker.RestoreDeck(snap.Deck, o.rng)
		if err != nil {
			return nil, fmt.Errorf("restoring deck: %w", err)
		}
		o.deck = deck
	}
	s, err := restoreState(snap, o.deck)
	if err != nil {
		return nil, err
	}
	// Blinds come from the snapshot so a hand in progress stays consistent.
	cfg.SmallBlind, cfg.BigBlind = s.SmallBlind, s.BigBlind
	return assemble(cfg, s, o), nil
}

func assemble(cfg Config, s *GameState, o *options) *Game {
	bus := NewEventBus()
	logger := o.logger.WithPrefix("game").With("game_id", s.ID)
	rules := NewRuleEngine(o.rule)
	actions := NewActionHandler(bus, o.clock)
	payouts := NewPayoutCalculator(o.evaluator, o.rake, bus, o.clock)
	table := NewTableManager(cfg.MaxPlayers, bus, o.clock)
	return &Game{
		state:     s,
		bus:       bus,
		rules:     rules,
		actions:   actions,
		payouts:   payouts,
		lifecycle: NewRoundLifecycle(rules, actions, payouts, table, bus, o.clock, logger),
		timeouts:  NewTimeoutManager(cfg.ActionTimeout, o.clock),
		table:     table,
		repo:      o.repo,
		logger:    logger,
	}
}

// ID returns the game id.
func (g *Game) ID() string {
	return g.state.ID
}

// Subscribe registers s for every subsequent event.
func (g *Game) Subscribe(s Subscriber) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bus.Subscribe(s)
}

// Unsubscribe removes s.
func (g *Game) Unsubscribe(s Subscriber) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bus.Unsubscribe(s)
}

// Join seats p, or puts it on the waiting list while a hand is running.
func (g *Game) Join(p *Player) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	seated, err := g.table.Join(p, g.state)
	if err != nil {
		return err
	}
	g.logger.Debug("Player joined", "player", p.id, "seated", seated)
	g.persist()
	return nil
}

// Leave removes a player. During a hand the player is marked LEFT and, if
// the action was on them, folded so play continues.
func (g *Game) Leave(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, wasTurn, err := g.table.Leave(id, g.state)
	if err != nil {
		return err
	}
	g.logger.Debug("Player left", "player", id, "phase", g.state.Phase, "on_turn", wasTurn)

	if wasTurn {
		if _, _, err := g.actions.apply(p, ActionFold, 0, g.state, false); err != nil {
			return err
		}
		err = g.lifecycle.AdvanceGame(g.state)
	} else {
		err = g.lifecycle.Reconcile(g.state)
	}
	g.persist()
	return err
}

// StartHand deals the next hand. It returns ErrNotEnoughPlayers with fewer
// than two players at the table.
func (g *Game) StartHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.lifecycle.StartHand(g.state); err != nil {
		return err
	}
	g.persist()
	return nil
}

// PerformAction validates and applies a player's action, then advances the
// hand. For a raise, amount is the new street total.
func (g *Game) PerformAction(id string, action ActionType, amount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.state.Player(id)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if err := g.rules.ValidateAction(p, action, amount, g.state.BigBlind, g.state); err != nil {
		return err
	}
	applied, moved, err := g.actions.Execute(p, action, amount, g.state)
	if err != nil {
		return err
	}
	g.logger.Debug("Action applied", "player", id, "action", applied, "chips", moved, "phase", g.state.Phase)

	err = g.lifecycle.AdvanceGame(g.state)
	g.persist()
	return err
}

// CheckTimeouts forces a check or fold on the acting player once their time
// is up. It reports whether an action was forced.
func (g *Game) CheckTimeouts() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, action, ok := g.timeouts.Due(g.state)
	if !ok {
		return false, nil
	}
	if _, _, err := g.actions.apply(p, action, 0, g.state, true); err != nil {
		return false, err
	}
	g.logger.Debug("Turn timed out", "player", p.id, "forced", action)

	err := g.lifecycle.AdvanceGame(g.state)
	g.persist()
	return true, err
}

// AllowedActions lists the legal actions for id, or nil when it is not
// their turn.
func (g *Game) AllowedActions(id string) []ActionType {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.state.Player(id)
	if p == nil {
		return nil
	}
	return g.rules.AllowedActions(p, g.state)
}

// Turn returns what the acting player may do. ok is false outside a
// betting round.
func (g *Game) Turn() (turn PlayerTurnEvent, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.state.Current()
	if p == nil || !g.state.Phase.Betting() {
		return PlayerTurnEvent{}, false
	}
	return g.lifecycle.turn(g.state, p), true
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Snapshot()
}

func (g *Game) persist() {
	if g.repo == nil {
		return
	}
	if err := g.repo.Save(context.Background(), g.state.Snapshot()); err != nil {
		g.logger.Error("Failed to save snapshot", "error", err)
	}
}
