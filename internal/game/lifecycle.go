package game

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// RoundLifecycle is the hand state machine: it deals, posts blinds, moves
// the action pointer, deals streets and ends the hand by fold or showdown.
type RoundLifecycle struct {
	rules   *RuleEngine
	actions *ActionHandler
	payouts *PayoutCalculator
	table   *TableManager
	notify  *notifier
	logger  *log.Logger
}

// NewRoundLifecycle wires the lifecycle to its collaborators.
func NewRoundLifecycle(rules *RuleEngine, actions *ActionHandler, payouts *PayoutCalculator, table *TableManager, bus *EventBus, clock quartz.Clock, logger *log.Logger) *RoundLifecycle {
	return &RoundLifecycle{
		rules:   rules,
		actions: actions,
		payouts: payouts,
		table:   table,
		notify:  &notifier{bus: bus, clock: clock},
		logger:  logger,
	}
}

func canPlay(p *Player) bool {
	return p.status != StatusLeft && p.chips > 0
}

// StartHand settles seating, rotates the button, shuffles, deals two cards
// to every player with chips and posts the blinds. With fewer than two
// players able to play after seating it parks the table in PRE_GAME and
// returns nil.
func (r *RoundLifecycle) StartHand(s *GameState) error {
	if !s.Phase.Idle() {
		return fmt.Errorf("%w: hand in progress (%s)", ErrInvalidAction, s.Phase)
	}
	// Waiting players count here: ProcessSeatings seats them below, so one
	// seated player and one waiting player are enough to deal.
	if len(s.Players)+len(s.Waiting) < 2 {
		return fmt.Errorf("%w: %d at the table", ErrNotEnoughPlayers, len(s.Players)+len(s.Waiting))
	}

	r.table.ProcessSeatings(s)
	playable := 0
	for _, p := range s.Players {
		if canPlay(p) {
			playable++
		}
	}
	if playable < 2 {
		s.Phase = PhasePreGame
		r.logger.Debug("Waiting for players", "seated", len(s.Players), "playable", playable)
		r.notify.stateChanged(s)
		return nil
	}

	s.HandNumber++
	s.HandID = uuid.NewString()
	r.moveButton(s)

	s.Deck.Reset()
	s.Board = s.Board[:0]
	s.Pot.Reset()
	s.ClearActed()
	s.Phase = PhasePreFlop

	var dealt []string
	for _, p := range s.Players {
		p.clearHoleCards()
		p.resetBet()
		if p.chips > 0 {
			p.setStatus(StatusActive)
			dealt = append(dealt, p.id)
		} else {
			p.setStatus(StatusSittingOut)
		}
	}

	r.notify.publish(GameStartedEvent{
		GameID:     s.ID,
		HandID:     s.HandID,
		HandNumber: s.HandNumber,
		Players:    dealt,
		At:         r.notify.now(),
	})

	for range 2 {
		for _, p := range s.Players {
			if p.status != StatusActive {
				continue
			}
			c, ok := s.Deck.Deal()
			if !ok {
				return ErrDeckExhausted
			}
			if err := p.addHoleCard(c); err != nil {
				return err
			}
		}
	}

	sb, bb := r.blindSeats(s)
	if _, err := r.actions.PostBlind(s.Players[sb], ActionSmallBlind, s.SmallBlind, s); err != nil {
		return err
	}
	if _, err := r.actions.PostBlind(s.Players[bb], ActionBigBlind, s.BigBlind, s); err != nil {
		return err
	}

	r.logger.Debug("Hand started",
		"hand", s.HandNumber,
		"dealer", s.Players[s.Dealer].id,
		"sb", s.Players[sb].id,
		"bb", s.Players[bb].id)

	r.notify.publish(RoundStartedEvent{Phase: PhasePreFlop, At: r.notify.now()})

	first := s.NextSeat(bb, isActive)
	if len(dealt) == 2 {
		first = sb
		if !isActive(s.Players[sb]) {
			first = s.NextSeat(sb, isActive)
		}
	}
	// Blinds can leave nobody able to bet, or a single player who already
	// covers everything.
	if first < 0 || s.Count(StatusActive) == 1 && s.Players[first].bet >= s.HighestBet() {
		return r.TransitionPhase(s)
	}
	r.setTurn(s, first)
	return nil
}

// moveButton keeps the button where it is for the first hand and moves it
// one playing seat clockwise afterwards.
func (r *RoundLifecycle) moveButton(s *GameState) {
	start := s.Dealer
	if s.HandNumber == 1 {
		start = max(s.Dealer, 0) - 1
	}
	s.Dealer = s.NextSeat(start, canPlay)
}

// blindSeats returns the small and big blind seats. Heads-up the button
// posts the small blind.
func (r *RoundLifecycle) blindSeats(s *GameState) (sb, bb int) {
	if s.Count(StatusActive) == 2 {
		sb = s.Dealer
	} else {
		sb = s.NextSeat(s.Dealer, isActive)
	}
	bb = s.NextSeat(sb, isActive)
	return sb, bb
}

// AdvanceGame runs after every applied action: it ends the street when the
// round is complete or only one player is left, otherwise passes the action
// to the next ACTIVE seat.
func (r *RoundLifecycle) AdvanceGame(s *GameState) error {
	if s.Count(StatusActive, StatusAllIn) <= 1 || r.rules.IsRoundComplete(s) {
		return r.TransitionPhase(s)
	}
	next := s.NextSeat(s.Action, isActive)
	if next < 0 {
		return r.TransitionPhase(s)
	}
	r.setTurn(s, next)
	return nil
}

// Reconcile re-checks the street after a change that was not an action on
// the current turn, such as a player leaving out of turn.
func (r *RoundLifecycle) Reconcile(s *GameState) error {
	if !s.Phase.Betting() {
		return nil
	}
	if s.Count(StatusActive, StatusAllIn) <= 1 || r.rules.IsRoundComplete(s) {
		return r.TransitionPhase(s)
	}
	return nil
}

// TransitionPhase ends the current street. A lone survivor wins without a
// showdown. Otherwise bets reset, the next street is dealt and action starts
// left of the button; when no more than one player can still bet, the
// remaining streets are dealt straight through to showdown.
func (r *RoundLifecycle) TransitionPhase(s *GameState) error {
	switch s.Phase {
	case PhasePreGame:
		return fmt.Errorf("%w: no hand to advance in %s", ErrHandIsOver, s.Phase)
	case PhaseShowdown, PhaseHandEnded:
		return fmt.Errorf("%w: phase %s", ErrHandIsOver, s.Phase)
	}

	if s.Count(StatusActive, StatusAllIn) <= 1 {
		return r.winByFold(s)
	}

	for _, p := range s.Players {
		p.resetBet()
	}
	s.ClearActed()

	var next Phase
	var cards int
	switch s.Phase {
	case PhasePreFlop:
		next, cards = PhaseFlop, 3
	case PhaseFlop:
		next, cards = PhaseTurn, 1
	case PhaseTurn:
		next, cards = PhaseRiver, 1
	case PhaseRiver:
		return r.showdown(s)
	}

	for range cards {
		c, ok := s.Deck.Deal()
		if !ok {
			return ErrDeckExhausted
		}
		s.Board = append(s.Board, c)
	}
	s.Phase = next

	r.logger.Debug("Street dealt", "phase", next, "board", s.Board)
	r.notify.publish(RoundStartedEvent{Phase: next, Board: append(s.Board[:0:0], s.Board...), At: r.notify.now()})
	r.notify.stateChanged(s)

	if s.Count(StatusActive) <= 1 {
		return r.TransitionPhase(s)
	}
	r.setTurn(s, s.NextSeat(s.Dealer, isActive))
	return nil
}

func (r *RoundLifecycle) showdown(s *GameState) error {
	s.Phase = PhaseShowdown
	payout, err := r.payouts.Settle(s)
	if err != nil {
		return err
	}
	r.logger.Debug("Showdown", "winners", payout.Winners, "payouts", payout.Payouts, "rake", payout.Rake)
	r.endHand(s, payout, true)
	return nil
}

// winByFold gives the whole pot to the only player still in the hand. No
// cards are revealed and no rake is taken. If everyone has gone, each
// contribution is returned to whoever made it.
func (r *RoundLifecycle) winByFold(s *GameState) error {
	payout := Payout{Payouts: make(map[string]int)}
	for _, p := range s.Players {
		if p.status.InHand() {
			payout.Payouts[p.id] = s.Pot.Total()
			break
		}
	}
	if len(payout.Payouts) == 0 {
		payout.Payouts = s.Pot.Contributions()
	}

	for _, p := range s.Players {
		if amount := payout.Payouts[p.id]; amount > 0 {
			p.win(amount)
			payout.Winners = append(payout.Winners, p.id)
		}
	}
	r.logger.Debug("Won without showdown", "winners", payout.Winners, "pot", s.Pot.Total())
	r.endHand(s, payout, false)
	return nil
}

func (r *RoundLifecycle) endHand(s *GameState, payout Payout, showdown bool) {
	s.Pot.Reset()
	for _, p := range s.Players {
		p.resetBet()
	}
	s.ClearActed()
	s.Phase = PhaseHandEnded

	r.notify.publish(HandEndedEvent{
		HandID:   s.HandID,
		Winners:  payout.Winners,
		Payouts:  payout.Payouts,
		Board:    append(s.Board[:0:0], s.Board...),
		Hands:    payout.Hands,
		Rake:     payout.Rake,
		Showdown: showdown,
		At:       r.notify.now(),
	})
	for _, p := range s.Players {
		p.behavior.OnHandEnded(payout.Payouts[p.id])
	}
	r.notify.stateChanged(s)
}

// setTurn puts the action on seat and starts its clock.
func (r *RoundLifecycle) setTurn(s *GameState, seat int) {
	s.Action = seat
	s.TurnStartedAt = r.notify.now()
	r.notify.publish(r.turn(s, s.Players[seat]))
}

// turn describes p's options at the current bet.
func (r *RoundLifecycle) turn(s *GameState, p *Player) PlayerTurnEvent {
	highest := s.HighestBet()
	return PlayerTurnEvent{
		PlayerID: p.id,
		Allowed:  r.rules.AllowedActions(p, s),
		ToCall:   max(highest-p.bet, 0),
		MinRaise: MinRaise(highest, s.BigBlind),
		MaxRaise: r.rules.Rule().MaxRaise(p, highest, s),
		At:       s.TurnStartedAt,
	}
}
