package game

import (
	"fmt"
	"slices"

	"github.com/coder/quartz"
)

// DefaultMaxPlayers is the seat count used when none is configured.
const DefaultMaxPlayers = 10

// TableManager handles seating. Joins during a hand go to a waiting list and
// leaves during a hand are marked; both are settled by ProcessSeatings
// before the next deal.
type TableManager struct {
	maxPlayers int
	notify     *notifier
}

// NewTableManager creates a manager for a table of maxPlayers seats.
func NewTableManager(maxPlayers int, bus *EventBus, clock quartz.Clock) *TableManager {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &TableManager{maxPlayers: maxPlayers, notify: &notifier{bus: bus, clock: clock}}
}

// MaxPlayers returns the table capacity.
func (t *TableManager) MaxPlayers() int {
	return t.maxPlayers
}

// Join seats p immediately when no hand is running, otherwise puts it on
// the waiting list. Capacity counts seated and waiting players together.
func (t *TableManager) Join(p *Player, s *GameState) (seated bool, err error) {
	if s.Player(p.id) != nil || slices.ContainsFunc(s.Waiting, func(w *Player) bool { return w.id == p.id }) {
		return false, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.id)
	}
	if len(s.Players)+len(s.Waiting) >= t.maxPlayers {
		return false, fmt.Errorf("%w: %d of %d seats taken", ErrGameFull, len(s.Players)+len(s.Waiting), t.maxPlayers)
	}

	if s.Phase.Idle() {
		p.setStatus(StatusActive)
		s.Players = append(s.Players, p)
		t.notify.stateChanged(s)
		return true, nil
	}

	s.Waiting = append(s.Waiting, p)
	t.notify.publish(WaitingListJoinedEvent{PlayerID: p.id, Position: len(s.Waiting), At: t.notify.now()})
	return false, nil
}

// Leave removes a waiting or idle player outright. A player leaving during
// a hand is marked LEFT and stays seated until ProcessSeatings; wasTurn
// reports whether the action pointer was on them, in which case the caller
// must fold on their behalf.
func (t *TableManager) Leave(id string, s *GameState) (p *Player, wasTurn bool, err error) {
	if i := slices.IndexFunc(s.Waiting, func(w *Player) bool { return w.id == id }); i >= 0 {
		p = s.Waiting[i]
		s.Waiting = slices.Delete(s.Waiting, i, i+1)
		p.setStatus(StatusLeft)
		p.behavior.OnLeave()
		return p, false, nil
	}

	seat := s.Seat(id)
	if seat < 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	p = s.Players[seat]

	if s.Phase.Idle() {
		t.removeSeat(seat, s)
		p.setStatus(StatusLeft)
		p.behavior.OnLeave()
		t.notify.stateChanged(s)
		return p, false, nil
	}

	wasTurn = s.IsTurn(p) && p.status == StatusActive && s.Phase.Betting()
	p.setStatus(StatusLeft)
	p.behavior.OnLeave()
	return p, wasTurn, nil
}

// ProcessSeatings drops players who left and promotes waiting players, in
// arrival order, while seats are free.
func (t *TableManager) ProcessSeatings(s *GameState) {
	for i := len(s.Players) - 1; i >= 0; i-- {
		if s.Players[i].status == StatusLeft {
			t.removeSeat(i, s)
		}
	}
	for len(s.Waiting) > 0 && len(s.Players) < t.maxPlayers {
		p := s.Waiting[0]
		s.Waiting = s.Waiting[1:]
		p.setStatus(StatusActive)
		s.Players = append(s.Players, p)
	}
}

// removeSeat deletes a seat and keeps the button on the same player, or on
// the seat before a removed button so the next rotation lands correctly.
func (t *TableManager) removeSeat(seat int, s *GameState) {
	s.Players = slices.Delete(s.Players, seat, seat+1)
	if seat <= s.Dealer {
		s.Dealer--
	}
	if seat < s.Action {
		s.Action--
	}
	if len(s.Players) == 0 {
		s.Dealer, s.Action = 0, 0
	}
}
