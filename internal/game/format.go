package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/holdem-engine/poker"
)

// FormattingOptions controls how events are rendered as text.
type FormattingOptions struct {
	ShowTimeouts bool // Mark forced actions as timeouts
	ShowHands    bool // Include evaluated hands in hand summaries
}

// EventFormatter renders events as hand-history style lines.
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a formatter with the given options.
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders e, or returns "" for events that have no text form.
func (ef *EventFormatter) Format(e Event) string {
	switch e := e.(type) {
	case GameStartedEvent:
		return ef.FormatGameStarted(e)
	case RoundStartedEvent:
		return ef.FormatRoundStarted(e)
	case PlayerActionEvent:
		return ef.FormatPlayerAction(e)
	case HandEndedEvent:
		return ef.FormatHandEnded(e)
	case WaitingListJoinedEvent:
		return fmt.Sprintf("%s: joins the waiting list (#%d)", e.PlayerID, e.Position)
	case RakeCollectedEvent:
		return fmt.Sprintf("Rake: $%d", e.Amount)
	}
	return ""
}

// FormatGameStarted renders the hand header.
func (ef *EventFormatter) FormatGameStarted(e GameStartedEvent) string {
	return fmt.Sprintf("Hand #%d (%s) • %d players", e.HandNumber, e.HandID, len(e.Players))
}

// FormatRoundStarted renders a street header with the board so far.
func (ef *EventFormatter) FormatRoundStarted(e RoundStartedEvent) string {
	switch e.Phase {
	case PhasePreFlop:
		return "*** HOLE CARDS ***"
	case PhaseFlop:
		return fmt.Sprintf("*** FLOP *** [%s]", poker.FormatCards(e.Board))
	case PhaseTurn, PhaseRiver:
		if len(e.Board) < 4 {
			return fmt.Sprintf("*** %s ***", e.Phase)
		}
		last := len(e.Board) - 1
		return fmt.Sprintf("*** %s *** [%s] [%s]", e.Phase, poker.FormatCards(e.Board[:last]), e.Board[last])
	}
	return fmt.Sprintf("*** %s ***", e.Phase)
}

// FormatPlayerAction renders one action line.
func (ef *EventFormatter) FormatPlayerAction(e PlayerActionEvent) string {
	timedOut := ef.opts.ShowTimeouts && e.Forced
	switch e.Action {
	case ActionSmallBlind:
		return fmt.Sprintf("%s: posts small blind $%d", e.PlayerID, e.Amount)
	case ActionBigBlind:
		return fmt.Sprintf("%s: posts big blind $%d", e.PlayerID, e.Amount)
	case ActionFold:
		if timedOut {
			return fmt.Sprintf("%s: times out and folds", e.PlayerID)
		}
		return fmt.Sprintf("%s: folds", e.PlayerID)
	case ActionCheck:
		if timedOut {
			return fmt.Sprintf("%s: times out and checks", e.PlayerID)
		}
		return fmt.Sprintf("%s: checks", e.PlayerID)
	case ActionCall:
		return fmt.Sprintf("%s: calls $%d", e.PlayerID, e.Amount)
	case ActionRaise:
		return fmt.Sprintf("%s: raises to $%d", e.PlayerID, e.Bet)
	case ActionAllIn:
		return fmt.Sprintf("%s: goes all-in for $%d", e.PlayerID, e.Amount)
	}
	return fmt.Sprintf("%s: %s $%d", e.PlayerID, e.Action, e.Amount)
}

// FormatHandEnded renders the hand summary, one line per winner.
func (ef *EventFormatter) FormatHandEnded(e HandEndedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Hand %s Complete ===\n", e.HandID)
	if len(e.Board) > 0 {
		fmt.Fprintf(&b, "Board: [%s]\n", poker.FormatCards(e.Board))
	}
	for _, id := range e.Winners {
		line := fmt.Sprintf("Winner: %s ($%d)", id, e.Payouts[id])
		if hand, ok := e.Hands[id]; ok && e.Showdown {
			line += " - " + hand.String()
		}
		b.WriteString(line + "\n")
	}
	if ef.opts.ShowHands && e.Showdown {
		ids := make([]string, 0, len(e.Hands))
		for id := range e.Hands {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			hand := e.Hands[id]
			fmt.Fprintf(&b, "Shows: %s [%s] %s\n", id, poker.FormatCards(hand.Cards[:]), hand)
		}
	}
	return b.String()
}
