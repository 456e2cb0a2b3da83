package game

import (
	"fmt"
	"strings"
)

// Phase is the hand state machine position.
type Phase uint8

const (
	PhasePreGame Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseHandEnded
)

var phaseNames = [...]string{"PRE_GAME", "PRE_FLOP", "FLOP", "TURN", "RIVER", "SHOWDOWN", "HAND_ENDED"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// Betting reports whether players may act in this phase.
func (p Phase) Betting() bool {
	return p >= PhasePreFlop && p <= PhaseRiver
}

// Idle reports whether the table is waiting for StartHand.
func (p Phase) Idle() bool {
	return p == PhasePreGame || p == PhaseHandEnded
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// ActionType is a betting action. Blinds are only ever posted by the engine.
type ActionType uint8

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionAllIn
	ActionSmallBlind
	ActionBigBlind
)

var actionNames = [...]string{"fold", "check", "call", "raise", "allin", "small_blind", "big_blind"}

func (a ActionType) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("ActionType(%d)", a)
}

// IsBlind reports whether the action is a forced blind.
func (a ActionType) IsBlind() bool {
	return a == ActionSmallBlind || a == ActionBigBlind
}

// ParseActionType accepts the String form of an action, case insensitive.
// "all-in" and "all_in" are accepted for ActionAllIn.
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "all-in", "all_in":
		return ActionAllIn, nil
	}
	for i, name := range actionNames {
		if name == s {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
}

func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// PlayerStatus is a seat's participation in the current hand.
type PlayerStatus uint8

const (
	StatusActive PlayerStatus = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
	StatusLeft
)

var statusNames = [...]string{"active", "folded", "all_in", "sitting_out", "left"}

func (s PlayerStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("PlayerStatus(%d)", s)
}

// InHand reports whether the player still contests the pot.
func (s PlayerStatus) InHand() bool {
	return s == StatusActive || s == StatusAllIn
}

func (s PlayerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PlayerStatus) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = PlayerStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown player status %q", text)
}
