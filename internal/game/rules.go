package game

import (
	"fmt"
	"slices"
)

// BettingRule decides bet sizing for a betting variant.
type BettingRule interface {
	// Name identifies the variant, e.g. "no-limit".
	Name() string
	// AllowedActions lists the legal actions for p facing highestBet.
	AllowedActions(p *Player, highestBet int, s *GameState) []ActionType
	// ValidateRaise checks a raise to a new street total of amount.
	ValidateRaise(p *Player, amount, highestBet, bigBlind int, s *GameState) error
	// MaxRaise is the largest legal raise total for p.
	MaxRaise(p *Player, highestBet int, s *GameState) int
}

// MinRaise is the smallest legal raise total: the highest bet plus one big
// blind.
func MinRaise(highestBet, bigBlind int) int {
	return highestBet + bigBlind
}

// NoLimit is the default betting rule: any raise of at least one big blind
// over the highest bet, up to the whole stack.
type NoLimit struct{}

func (NoLimit) Name() string { return "no-limit" }

func (NoLimit) AllowedActions(p *Player, highestBet int, _ *GameState) []ActionType {
	return baseActions(p, highestBet)
}

func (NoLimit) ValidateRaise(p *Player, amount, highestBet, bigBlind int, _ *GameState) error {
	if amount < MinRaise(highestBet, bigBlind) {
		return fmt.Errorf("%w: raise to %d below minimum %d", ErrInvalidAction, amount, MinRaise(highestBet, bigBlind))
	}
	if delta := amount - p.bet; delta > p.chips {
		return fmt.Errorf("%w: raise to %d needs %d, stack is %d", ErrInsufficientChips, amount, delta, p.chips)
	}
	return nil
}

func (NoLimit) MaxRaise(p *Player, _ int, _ *GameState) int {
	return p.bet + p.chips
}

// PotLimit caps every raise at the size of the pot after calling.
type PotLimit struct{}

func (PotLimit) Name() string { return "pot-limit" }

func (r PotLimit) AllowedActions(p *Player, highestBet int, s *GameState) []ActionType {
	actions := baseActions(p, highestBet)
	toCall := highestBet - p.bet
	if p.chips > toCall && p.bet+p.chips > r.MaxRaise(p, highestBet, s) {
		actions = slices.DeleteFunc(actions, func(a ActionType) bool { return a == ActionAllIn })
	}
	return actions
}

func (r PotLimit) ValidateRaise(p *Player, amount, highestBet, bigBlind int, s *GameState) error {
	if err := (NoLimit{}).ValidateRaise(p, amount, highestBet, bigBlind, s); err != nil {
		return err
	}
	if limit := r.MaxRaise(p, highestBet, s); amount > limit {
		return fmt.Errorf("%w: raise to %d above pot limit %d", ErrInvalidAction, amount, limit)
	}
	return nil
}

func (PotLimit) MaxRaise(p *Player, highestBet int, s *GameState) int {
	toCall := highestBet - p.bet
	limit := highestBet + s.Pot.Total() + toCall
	return min(limit, p.bet+p.chips)
}

// baseActions is the legal set shared by every variant: fold and all-in are
// always legal, check only when nothing is owed, call when something is owed
// (an under-funded call becomes all-in), raise when chips remain after calling.
func baseActions(p *Player, highestBet int) []ActionType {
	actions := []ActionType{ActionFold}
	toCall := highestBet - p.bet
	if toCall <= 0 {
		actions = append(actions, ActionCheck)
	} else if p.chips > 0 {
		actions = append(actions, ActionCall)
	}
	if p.chips > toCall {
		actions = append(actions, ActionRaise)
	}
	if p.chips > 0 {
		actions = append(actions, ActionAllIn)
	}
	return actions
}

// RuleEngine answers "what may this player do" and "is the street over". It
// holds no game state of its own.
type RuleEngine struct {
	rule BettingRule
}

// NewRuleEngine creates a rule engine for the given variant; nil means
// NoLimit.
func NewRuleEngine(rule BettingRule) *RuleEngine {
	if rule == nil {
		rule = NoLimit{}
	}
	return &RuleEngine{rule: rule}
}

// Rule returns the betting variant in use.
func (r *RuleEngine) Rule() BettingRule {
	return r.rule
}

// AllowedActions returns the legal actions for p, or nil when it is not p's
// turn or no betting is possible.
func (r *RuleEngine) AllowedActions(p *Player, s *GameState) []ActionType {
	if !s.Phase.Betting() || !s.IsTurn(p) || p.status != StatusActive {
		return nil
	}
	return r.rule.AllowedActions(p, s.HighestBet(), s)
}

// ValidateAction checks a player-submitted action against the current state.
func (r *RuleEngine) ValidateAction(p *Player, action ActionType, amount, bigBlind int, s *GameState) error {
	// The action pointer means nothing before the first hand.
	if s.Phase == PhasePreGame {
		return fmt.Errorf("%w: phase %s", ErrHandIsOver, s.Phase)
	}
	if !s.IsTurn(p) || p.status != StatusActive {
		current := "nobody"
		if c := s.Current(); c != nil {
			current = c.id
		}
		return fmt.Errorf("%w: %s acted, action is on %s", ErrNotYourTurn, p.id, current)
	}
	if !s.Phase.Betting() {
		return fmt.Errorf("%w: phase %s", ErrHandIsOver, s.Phase)
	}

	highest := s.HighestBet()
	switch action {
	case ActionFold, ActionCall:
		return nil
	case ActionCheck:
		if p.bet < highest {
			return fmt.Errorf("%w: cannot check facing %d", ErrInvalidAction, highest-p.bet)
		}
		return nil
	case ActionRaise:
		return r.rule.ValidateRaise(p, amount, highest, bigBlind, s)
	case ActionAllIn:
		if !slices.Contains(r.rule.AllowedActions(p, highest, s), ActionAllIn) {
			return fmt.Errorf("%w: all-in not allowed under %s", ErrInvalidAction, r.rule.Name())
		}
		return nil
	case ActionSmallBlind, ActionBigBlind:
		return fmt.Errorf("%w: blinds are posted by the table", ErrInvalidAction)
	}
	return fmt.Errorf("%w: unknown action %d", ErrInvalidAction, action)
}

// IsRoundComplete is true when every ACTIVE player has matched the highest
// bet and has acted this street. Matching alone is not enough: the big blind
// keeps its option when everyone limps.
func (r *RuleEngine) IsRoundComplete(s *GameState) bool {
	highest := s.HighestBet()
	for _, p := range s.Players {
		if p.status != StatusActive {
			continue
		}
		if p.bet != highest || !s.HasActed(p.id) {
			return false
		}
	}
	return true
}
