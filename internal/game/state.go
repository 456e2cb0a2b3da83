package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/lox/holdem-engine/poker"
)

// Deck is the card source a game deals from. *poker.Deck implements it.
type Deck interface {
	Reset()
	Deal() (poker.Card, bool)
	Cards() []poker.Card
}

// GameState is the mutable table state for one game. Seat order in Players
// defines turn order and button rotation. The state owns its pot, board and
// seat list; components mutate it only while the game lock is held.
type GameState struct {
	ID         string
	SmallBlind int
	BigBlind   int

	Players []*Player
	Waiting []*Player
	Board   []poker.Card
	Pot     *Pot
	Deck    Deck

	Phase         Phase
	Dealer        int
	Action        int
	TurnStartedAt time.Time
	HandNumber    int
	HandID        string

	acted map[string]bool
}

// NewGameState returns an empty table in PRE_GAME.
func NewGameState(id string, smallBlind, bigBlind int, deck Deck) *GameState {
	return &GameState{
		ID:         id,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Pot:        NewPot(),
		Deck:       deck,
		Phase:      PhasePreGame,
		acted:      make(map[string]bool),
	}
}

// Current returns the player on the action pointer, or nil.
func (s *GameState) Current() *Player {
	if s.Action < 0 || s.Action >= len(s.Players) {
		return nil
	}
	return s.Players[s.Action]
}

// IsTurn reports whether p holds the action pointer.
func (s *GameState) IsTurn(p *Player) bool {
	return p != nil && s.Current() == p
}

// HighestBet is the largest current-street bet at the table.
func (s *GameState) HighestBet() int {
	highest := 0
	for _, p := range s.Players {
		highest = max(highest, p.bet)
	}
	return highest
}

// Seat returns the seat index of id, or -1.
func (s *GameState) Seat(id string) int {
	return slices.IndexFunc(s.Players, func(p *Player) bool { return p.id == id })
}

// Player returns the seated player with id, or nil.
func (s *GameState) Player(id string) *Player {
	if i := s.Seat(id); i >= 0 {
		return s.Players[i]
	}
	return nil
}

// Count returns how many seated players have one of the given statuses.
func (s *GameState) Count(statuses ...PlayerStatus) int {
	n := 0
	for _, p := range s.Players {
		if slices.Contains(statuses, p.status) {
			n++
		}
	}
	return n
}

// NextSeat walks clockwise from seat (exclusive) and returns the first seat
// whose player satisfies match, or -1 after a full lap.
func (s *GameState) NextSeat(seat int, match func(*Player) bool) int {
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		i := ((seat+step)%n + n) % n
		if match(s.Players[i]) {
			return i
		}
	}
	return -1
}

func isActive(p *Player) bool {
	return p.status == StatusActive
}

func (s *GameState) MarkActed(id string)     { s.acted[id] = true }
func (s *GameState) HasActed(id string) bool { return s.acted[id] }
func (s *GameState) ClearActed()             { clear(s.acted) }

// Snapshot is a serialisable copy of a GameState.
type Snapshot struct {
	GameID        string           `json:"game_id"`
	HandID        string           `json:"hand_id,omitempty"`
	HandNumber    int              `json:"hand_number"`
	SmallBlind    int              `json:"small_blind"`
	BigBlind      int              `json:"big_blind"`
	Phase         Phase            `json:"phase"`
	Dealer        int              `json:"dealer"`
	Action        int              `json:"action"`
	Board         []poker.Card     `json:"board"`
	Pot           PotSnapshot      `json:"pot"`
	Players       []PlayerSnapshot `json:"players"`
	Waiting       []PlayerSnapshot `json:"waiting,omitempty"`
	Acted         []string         `json:"acted,omitempty"`
	TurnStartedAt time.Time        `json:"turn_started_at"`
	Deck          []poker.Card     `json:"deck,omitempty"`
}

// PotSnapshot is the serialised pot.
type PotSnapshot struct {
	Total         int            `json:"total"`
	Contributions map[string]int `json:"contributions,omitempty"`
}

// PlayerSnapshot is the serialised form of a Player.
type PlayerSnapshot struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Chips     int          `json:"chips"`
	Bet       int          `json:"bet"`
	Status    PlayerStatus `json:"status"`
	HoleCards []poker.Card `json:"hole_cards,omitempty"`
}

func snapshotPlayer(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:        p.id,
		Name:      p.name,
		Chips:     p.chips,
		Bet:       p.bet,
		Status:    p.status,
		HoleCards: p.HoleCards(),
	}
}

// Snapshot copies the state. The deck is included so a restored game deals
// the same remaining cards.
func (s *GameState) Snapshot() Snapshot {
	snap := Snapshot{
		GameID:        s.ID,
		HandID:        s.HandID,
		HandNumber:    s.HandNumber,
		SmallBlind:    s.SmallBlind,
		BigBlind:      s.BigBlind,
		Phase:         s.Phase,
		Dealer:        s.Dealer,
		Action:        s.Action,
		Board:         slices.Clone(s.Board),
		Pot:           PotSnapshot{Total: s.Pot.Total(), Contributions: s.Pot.Contributions()},
		TurnStartedAt: s.TurnStartedAt,
	}
	for _, p := range s.Players {
		snap.Players = append(snap.Players, snapshotPlayer(p))
		if s.acted[p.id] {
			snap.Acted = append(snap.Acted, p.id)
		}
	}
	for _, p := range s.Waiting {
		snap.Waiting = append(snap.Waiting, snapshotPlayer(p))
	}
	if s.Deck != nil {
		snap.Deck = s.Deck.Cards()
	}
	return snap
}

// Player returns the snapshot of the seated player with id.
func (s Snapshot) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// ChipsInPlay is every chip on the table: stacks plus the pot.
func (s Snapshot) ChipsInPlay() int {
	total := s.Pot.Total
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}

func restorePlayer(ps PlayerSnapshot) (*Player, error) {
	p := NewPlayer(ps.ID, ps.Name, ps.Chips)
	p.bet = ps.Bet
	p.status = ps.Status
	for _, c := range ps.HoleCards {
		if err := p.addHoleCard(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// restoreState rebuilds a GameState from snap, dealing from deck.
func restoreState(snap Snapshot, deck Deck) (*GameState, error) {
	s := NewGameState(snap.GameID, snap.SmallBlind, snap.BigBlind, deck)
	s.HandID = snap.HandID
	s.HandNumber = snap.HandNumber
	s.Phase = snap.Phase
	s.Dealer = snap.Dealer
	s.Action = snap.Action
	s.Board = slices.Clone(snap.Board)
	s.TurnStartedAt = snap.TurnStartedAt

	for _, ps := range snap.Players {
		p, err := restorePlayer(ps)
		if err != nil {
			return nil, err
		}
		s.Players = append(s.Players, p)
	}
	for _, ps := range snap.Waiting {
		p, err := restorePlayer(ps)
		if err != nil {
			return nil, err
		}
		s.Waiting = append(s.Waiting, p)
	}
	for _, id := range snap.Acted {
		s.MarkActed(id)
	}

	sum := 0
	for id, amount := range snap.Pot.Contributions {
		s.Pot.Add(id, amount)
		sum += amount
	}
	if sum != snap.Pot.Total {
		return nil, fmt.Errorf("snapshot pot total %d does not match contributions %d", snap.Pot.Total, sum)
	}
	if len(s.Players) > 0 && (s.Action < 0 || s.Action >= len(s.Players)) {
		return nil, fmt.Errorf("snapshot action seat %d out of range", s.Action)
	}
	return s, nil
}
