package game

import (
	"fmt"

	"github.com/coder/quartz"
)

// ActionHandler applies validated actions to the state: chips move from the
// stack to the pot, statuses change and events are published.
type ActionHandler struct {
	notify *notifier
}

// NewActionHandler creates a handler that publishes to bus, stamping events
// with clock.
func NewActionHandler(bus *EventBus, clock quartz.Clock) *ActionHandler {
	return &ActionHandler{notify: &notifier{bus: bus, clock: clock}}
}

// Execute applies an action that RuleEngine.ValidateAction accepted and
// returns the action as recorded together with the chips it moved. A call
// for more than the stack is recorded as allin; a call with nothing owed is
// recorded as check. Raise amounts are the new street total, not a delta.
func (h *ActionHandler) Execute(p *Player, action ActionType, amount int, s *GameState) (ActionType, int, error) {
	return h.apply(p, action, amount, s, false)
}

func (h *ActionHandler) apply(p *Player, action ActionType, amount int, s *GameState, forced bool) (ActionType, int, error) {
	before := p.chips
	potBefore := s.Pot.Total()
	highest := s.HighestBet()

	moved := 0
	switch action {
	case ActionFold:
		if p.status != StatusLeft {
			p.setStatus(StatusFolded)
		}
	case ActionCheck:
	case ActionCall:
		toCall := highest - p.bet
		switch {
		case toCall <= 0:
			action = ActionCheck
		case toCall > p.chips:
			action = ActionAllIn
			moved = p.chips
		default:
			moved = toCall
		}
	case ActionRaise:
		moved = amount - p.bet
	case ActionAllIn:
		moved = p.chips
	default:
		return action, 0, fmt.Errorf("%w: %s cannot be submitted as an action", ErrInvalidAction, action)
	}

	if err := commit(p, moved, s); err != nil {
		return action, 0, err
	}
	s.MarkActed(p.id)

	h.notify.publish(PlayerActionEvent{
		PlayerID:    p.id,
		Action:      action,
		Amount:      moved,
		Bet:         p.bet,
		ChipsBefore: before,
		ChipsAfter:  p.chips,
		Forced:      forced,
		At:          h.notify.now(),
	})
	if s.Pot.Total() != potBefore {
		h.notify.potUpdated(s)
	}
	h.notify.stateChanged(s)
	return action, moved, nil
}

// PostBlind posts a forced blind. Chip movement matches a bet but the poster
// is not marked as having acted, so it still gets an option later. A stack
// shorter than the blind posts everything and goes all-in.
func (h *ActionHandler) PostBlind(p *Player, blind ActionType, amount int, s *GameState) (int, error) {
	if !blind.IsBlind() {
		return 0, fmt.Errorf("%w: %s is not a blind", ErrInvalidAction, blind)
	}
	before := p.chips
	posted := min(amount, p.chips)
	if err := commit(p, posted, s); err != nil {
		return 0, err
	}

	h.notify.publish(PlayerActionEvent{
		PlayerID:    p.id,
		Action:      blind,
		Amount:      posted,
		Bet:         p.bet,
		ChipsBefore: before,
		ChipsAfter:  p.chips,
		At:          h.notify.now(),
	})
	if posted > 0 {
		h.notify.potUpdated(s)
	}
	h.notify.stateChanged(s)
	return posted, nil
}

// commit moves amount from p's stack into the pot. A player left with no
// chips is all-in.
func commit(p *Player, amount int, s *GameState) error {
	if amount == 0 {
		return nil
	}
	if err := p.wager(amount); err != nil {
		return err
	}
	s.Pot.Add(p.id, amount)
	if p.chips == 0 && p.status == StatusActive {
		p.setStatus(StatusAllIn)
	}
	return nil
}
