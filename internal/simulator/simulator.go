// Package simulator plays many hands between bots across concurrent tables.
// Each table is an independent game with its own seeded random stream, so a
// run is reproducible from its seed regardless of scheduling.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/bot"
	"github.com/lox/holdem-engine/internal/broadcast"
	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
)

// DefaultPollInterval is how often the timeout poller runs.
const DefaultPollInterval = 100 * time.Millisecond

// Config holds configuration for a simulation run.
type Config struct {
	Tables []config.TableConfig
	Bots   []config.BotConfig

	Hands  int   // hands per table
	Copies int   // instances of each table, default 1
	Seed   int64 // zero picks a time based seed
	Rebuy  bool  // top busted bots back up to their starting stack

	// Absent lists bots that never act; the timeout poller folds or checks
	// for them.
	Absent []string

	Repository   game.Repository
	Publisher    broadcast.Publisher
	Clock        quartz.Clock
	PollInterval time.Duration
	Logger       *log.Logger
	Output       io.Writer // hand histories, nil for none
}

// TableResult summarises one table.
type TableResult struct {
	Name   string
	GameID string
	Hands  int
	Stats  map[string]*Statistics
}

// Results is the outcome of a run.
type Results struct {
	Seed   int64
	Tables []TableResult
	// Players merges each bot's statistics across tables.
	Players map[string]*Statistics
}

// Simulator runs simulations.
type Simulator struct {
	cfg Config
	out *lockedWriter
}

// New creates a simulator, filling in defaults.
func New(cfg Config) *Simulator {
	if cfg.Copies <= 0 {
		cfg.Copies = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	}
	cfg.Seed = randutil.Seed(cfg.Seed)
	s := &Simulator{cfg: cfg}
	if cfg.Output != nil {
		s.out = &lockedWriter{w: cfg.Output}
	}
	return s
}

// Seed returns the seed the run uses.
func (s *Simulator) Seed() int64 {
	return s.cfg.Seed
}

// Run plays every table to completion. The first table error cancels the
// rest.
func (s *Simulator) Run(ctx context.Context) (*Results, error) {
	if s.cfg.Hands <= 0 {
		return nil, fmt.Errorf("hands must be positive, got %d", s.cfg.Hands)
	}
	if len(s.cfg.Tables) == 0 {
		return nil, errors.New("no tables configured")
	}

	results := make([]TableResult, len(s.cfg.Tables)*s.cfg.Copies)
	eg, ctx := errgroup.WithContext(ctx)
	for i, tc := range s.cfg.Tables {
		for c := range s.cfg.Copies {
			idx := i*s.cfg.Copies + c
			name := tc.Name
			if s.cfg.Copies > 1 {
				name = fmt.Sprintf("%s-%d", tc.Name, c+1)
			}
			eg.Go(func() error {
				t, err := s.newTable(name, tc, uint64(idx))
				if err != nil {
					return fmt.Errorf("table %s: %w", name, err)
				}
				res, err := t.run(ctx)
				if err != nil {
					return fmt.Errorf("table %s: %w", name, err)
				}
				results[idx] = res
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Results{Seed: s.cfg.Seed, Tables: results, Players: make(map[string]*Statistics)}
	for _, tr := range results {
		for name, st := range tr.Stats {
			if out.Players[name] == nil {
				out.Players[name] = &Statistics{}
			}
			out.Players[name].Merge(st)
		}
	}
	for name, st := range out.Players {
		if st.Hands == 0 {
			continue
		}
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("statistics for %s: %w", name, err)
		}
	}
	return out, nil
}

type seat struct {
	name  string
	stack int
	bot   bot.Bot // nil when absent
}

type table struct {
	sim    *Simulator
	name   string
	g      *game.Game
	cfg    game.Config
	seats  []seat
	logger *log.Logger

	// moved is signalled whenever the game moves on its own, so the hand
	// loop can wake up while waiting on an absent player.
	moved chan struct{}

	ended     *game.HandEndedEvent
	lastPhase game.Phase
	history   strings.Builder
	formatter *game.EventFormatter
}

func (s *Simulator) newTable(name string, tc config.TableConfig, stream uint64) (*table, error) {
	gcfg, opts, err := tc.GameConfig()
	if err != nil {
		return nil, err
	}

	// Even streams deal cards, odd streams drive bots.
	deckRNG := randutil.Stream(s.cfg.Seed, 2*stream)
	botRNG := randutil.Stream(s.cfg.Seed, 2*stream+1)

	logger := s.cfg.Logger.WithPrefix("sim").With("table", name)
	opts = append(opts,
		game.WithID(fmt.Sprintf("%s-%d", name, s.cfg.Seed)),
		game.WithRNG(deckRNG),
		game.WithClock(s.cfg.Clock),
		game.WithLogger(s.cfg.Logger),
	)
	if s.cfg.Repository != nil {
		opts = append(opts, game.WithRepository(s.cfg.Repository))
	}

	t := &table{
		sim:       s,
		name:      name,
		g:         game.New(gcfg, opts...),
		cfg:       gcfg,
		logger:    logger,
		moved:     make(chan struct{}, 1),
		formatter: game.NewEventFormatter(game.FormattingOptions{ShowTimeouts: true, ShowHands: true}),
	}
	t.g.Subscribe(t)
	if s.cfg.Publisher != nil {
		broadcast.Attach(t.g, s.cfg.Publisher, broadcast.WithLogger(s.cfg.Logger))
	}

	absent := make(map[string]bool, len(s.cfg.Absent))
	for _, id := range s.cfg.Absent {
		absent[id] = true
	}
	cfg := config.Config{Tables: []config.TableConfig{tc}, Bots: s.cfg.Bots}
	for _, bc := range cfg.BotsFor(tc.Name) {
		st := seat{name: bc.Name, stack: bc.Stack}
		if st.stack <= 0 {
			st.stack = tc.StartingStack
		}
		if !absent[bc.Name] {
			b, err := bot.New(bc.Strategy, botRNG)
			if err != nil {
				return nil, err
			}
			st.bot = b
		}
		if st.bot == nil && gcfg.ActionTimeout <= 0 {
			return nil, fmt.Errorf("absent bot %s needs an action timeout", bc.Name)
		}
		t.seats = append(t.seats, st)
		if err := t.g.Join(game.NewPlayer(bc.Name, bc.Name, st.stack)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// OnEvent runs under the game lock.
func (t *table) OnEvent(e game.Event) {
	switch e := e.(type) {
	case game.HandEndedEvent:
		t.ended = &e
	case game.RoundStartedEvent:
		t.lastPhase = e.Phase
	}
	if t.sim.out != nil {
		if line := t.formatter.Format(e); line != "" {
			t.history.WriteString(line)
			t.history.WriteByte('\n')
		}
	}
	select {
	case t.moved <- struct{}{}:
	default:
	}
}

func (t *table) run(ctx context.Context) (TableResult, error) {
	res := TableResult{Name: t.name, GameID: t.g.ID(), Stats: make(map[string]*Statistics)}
	for _, st := range t.seats {
		res.Stats[st.name] = &Statistics{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	poller := t.sim.cfg.Clock.TickerFunc(ctx, t.sim.cfg.PollInterval, func() error {
		if _, err := t.g.CheckTimeouts(); err != nil {
			t.logger.Warn("Timeout check failed", "error", err)
		}
		return nil
	}, "simulator", "timeouts")

	for res.Hands < t.sim.cfg.Hands {
		played, err := t.playHand(ctx, res.Stats)
		if err != nil {
			return res, err
		}
		if !played {
			t.logger.Info("Table finished early", "hands", res.Hands)
			break
		}
		res.Hands++
	}

	cancel()
	if err := poller.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return res, err
	}
	return res, nil
}

// playHand plays one hand and records it. It reports false when the table
// can no longer deal.
func (t *table) playHand(ctx context.Context, stats map[string]*Statistics) (bool, error) {
	if t.sim.cfg.Rebuy {
		if err := t.rebuy(); err != nil {
			return false, err
		}
	}

	before := t.g.Snapshot()
	t.ended = nil
	if err := t.g.StartHand(); errors.Is(err, game.ErrNotEnoughPlayers) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if t.g.Snapshot().Phase == game.PhasePreGame {
		return false, nil
	}

	for {
		turn, ok := t.g.Turn()
		if !ok {
			break
		}
		b := t.botFor(turn.PlayerID)
		if b == nil {
			select {
			case <-t.moved:
				continue
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
		if err := t.act(b, turn); err != nil {
			return false, err
		}
	}

	after := t.g.Snapshot()
	if after.Phase != game.PhaseHandEnded || t.ended == nil {
		return false, fmt.Errorf("hand stopped in %s", after.Phase)
	}
	if got, want := after.ChipsInPlay()+t.ended.Rake, before.ChipsInPlay(); got != want {
		return false, fmt.Errorf("chips not conserved: %d after, %d before", got, want)
	}
	t.record(before, after, stats)
	t.flushHistory()
	return true, nil
}

func (t *table) botFor(id string) bot.Bot {
	for _, st := range t.seats {
		if st.name == id {
			return st.bot
		}
	}
	return nil
}

// act asks b for a decision. A rejected decision falls back to check or
// fold so a buggy strategy cannot stall the table.
func (t *table) act(b bot.Bot, turn game.PlayerTurnEvent) error {
	view := bot.NewView(t.g.Snapshot(), turn)
	d := b.Decide(view)
	err := t.g.PerformAction(turn.PlayerID, d.Action, d.Amount)
	if err == nil {
		return nil
	}
	if !errors.Is(err, game.ErrInvalidAction) && !errors.Is(err, game.ErrInsufficientChips) {
		return err
	}
	t.logger.Warn("Bot decision rejected", "player", turn.PlayerID, "action", d.Action, "amount", d.Amount, "reason", d.Reasoning, "error", err)
	fallback := view.Fold("fallback")
	return t.g.PerformAction(turn.PlayerID, fallback.Action, 0)
}

func (t *table) rebuy() error {
	snap := t.g.Snapshot()
	for _, st := range t.seats {
		p, ok := snap.Player(st.name)
		if !ok || p.Chips > 0 {
			continue
		}
		if err := t.g.Leave(st.name); err != nil {
			return err
		}
		if err := t.g.Join(game.NewPlayer(st.name, st.name, st.stack)); err != nil {
			return err
		}
		t.logger.Debug("Rebuy", "player", st.name, "stack", st.stack)
	}
	return nil
}

func (t *table) record(before, after game.Snapshot, stats map[string]*Statistics) {
	pot := 0
	for _, amount := range t.ended.Payouts {
		pot += amount
	}
	pot += t.ended.Rake

	street := game.PhasePreFlop
	if t.lastPhase.Betting() {
		street = t.lastPhase
	}
	bb := float64(t.cfg.BigBlind)
	for _, p := range before.Players {
		if p.Chips == 0 || stats[p.ID] == nil {
			continue
		}
		end, ok := after.Player(p.ID)
		if !ok {
			continue
		}
		stats[p.ID].Add(HandResult{
			NetBB:    float64(end.Chips-p.Chips) / bb,
			Showdown: t.ended.Showdown,
			PotChips: pot,
			PotBB:    float64(pot) / bb,
			Street:   street,
		})
	}
}

func (t *table) flushHistory() {
	if t.sim.out == nil || t.history.Len() == 0 {
		return
	}
	fmt.Fprintf(t.sim.out, "[%s]\n%s\n", t.name, t.history.String())
	t.history.Reset()
}

// lockedWriter keeps hands from different tables from interleaving.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
