package game

import (
	"time"

	"github.com/coder/quartz"
)

// TimeoutManager decides whether the acting player has run out of time. It
// does not schedule anything; an external poller calls Game.CheckTimeouts.
type TimeoutManager struct {
	timeout time.Duration
	clock   quartz.Clock
}

// NewTimeoutManager creates a manager. A timeout of zero or less disables it.
func NewTimeoutManager(timeout time.Duration, clock quartz.Clock) *TimeoutManager {
	return &TimeoutManager{timeout: timeout, clock: clock}
}

// Enabled reports whether timeouts are enforced.
func (m *TimeoutManager) Enabled() bool {
	return m.timeout > 0
}

// Due returns the player on the clock and the action to force on them: a
// check when nothing is owed, otherwise a fold. ok is false while the player
// still has time, when timeouts are disabled, or outside betting.
func (m *TimeoutManager) Due(s *GameState) (p *Player, action ActionType, ok bool) {
	if !m.Enabled() || !s.Phase.Betting() {
		return nil, 0, false
	}
	p = s.Current()
	if p == nil || p.status != StatusActive {
		return nil, 0, false
	}
	if m.clock.Now().Sub(s.TurnStartedAt) <= m.timeout {
		return nil, 0, false
	}
	if p.bet == s.HighestBet() {
		return p, ActionCheck, true
	}
	return p, ActionFold, true
}
