package game

import (
	"slices"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/poker"
)

// EventType names an engine event.
type EventType string

const (
	EventTypeGameStarted       EventType = "game_started"
	EventTypeRoundStarted      EventType = "round_started"
	EventTypeStateChanged      EventType = "state_changed"
	EventTypePlayerTurn        EventType = "player_turn"
	EventTypePlayerAction      EventType = "player_action"
	EventTypePotUpdate         EventType = "pot_update"
	EventTypeHandEnded         EventType = "hand_ended"
	EventTypeWaitingListJoined EventType = "waiting_list_joined"
	EventTypeRakeCollected     EventType = "rake_collected"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine publishes.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// GameStartedEvent is published when a hand is dealt.
type GameStartedEvent struct {
	GameID     string    `json:"game_id"`
	HandID     string    `json:"hand_id"`
	HandNumber int       `json:"hand_number"`
	Players    []string  `json:"players"`
	At         time.Time `json:"at"`
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.At }

// RoundStartedEvent is published when a street begins.
type RoundStartedEvent struct {
	Phase Phase        `json:"phase"`
	Board []poker.Card `json:"board"`
	At    time.Time    `json:"at"`
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.At }

// StateChangedEvent carries a full copy of the table after a change.
type StateChangedEvent struct {
	State Snapshot  `json:"state"`
	At    time.Time `json:"at"`
}

func (e StateChangedEvent) EventType() EventType { return EventTypeStateChanged }
func (e StateChangedEvent) Timestamp() time.Time { return e.At }

// PlayerTurnEvent is published when the action pointer lands on a player.
// MinRaise and MaxRaise are street totals; MinRaise can exceed MaxRaise when
// the player is too short to make a full raise.
type PlayerTurnEvent struct {
	PlayerID string       `json:"player_id"`
	Allowed  []ActionType `json:"allowed"`
	ToCall   int          `json:"to_call"`
	MinRaise int          `json:"min_raise"`
	MaxRaise int          `json:"max_raise"`
	At       time.Time    `json:"at"`
}

func (e PlayerTurnEvent) EventType() EventType { return EventTypePlayerTurn }
func (e PlayerTurnEvent) Timestamp() time.Time { return e.At }

// PlayerActionEvent is published for every applied action, blinds included.
// Amount is the chips moved by this action; Action is the type after
// normalisation (an under-funded call is reported as allin).
type PlayerActionEvent struct {
	PlayerID    string     `json:"player_id"`
	Action      ActionType `json:"action"`
	Amount      int        `json:"amount"`
	Bet         int        `json:"bet"`
	ChipsBefore int        `json:"chips_before"`
	ChipsAfter  int        `json:"chips_after"`
	Forced      bool       `json:"forced,omitempty"`
	At          time.Time  `json:"at"`
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.At }

// PotUpdateEvent is published when the pot total changes.
type PotUpdateEvent struct {
	Total int       `json:"total"`
	At    time.Time `json:"at"`
}

func (e PotUpdateEvent) EventType() EventType { return EventTypePotUpdate }
func (e PotUpdateEvent) Timestamp() time.Time { return e.At }

// HandEndedEvent reports the result of a hand. Hands holds the evaluated
// showdown hands and is empty when the hand was won by folds.
type HandEndedEvent struct {
	HandID   string                      `json:"hand_id"`
	Winners  []string                    `json:"winners"`
	Payouts  map[string]int              `json:"payouts"`
	Board    []poker.Card                `json:"board"`
	Hands    map[string]poker.HandResult `json:"hands,omitempty"`
	Rake     int                         `json:"rake"`
	Showdown bool                        `json:"showdown"`
	At       time.Time                   `json:"at"`
}

func (e HandEndedEvent) EventType() EventType { return EventTypeHandEnded }
func (e HandEndedEvent) Timestamp() time.Time { return e.At }

// WaitingListJoinedEvent is published when a join is deferred to the next hand.
type WaitingListJoinedEvent struct {
	PlayerID string    `json:"player_id"`
	Position int       `json:"position"`
	At       time.Time `json:"at"`
}

func (e WaitingListJoinedEvent) EventType() EventType { return EventTypeWaitingListJoined }
func (e WaitingListJoinedEvent) Timestamp() time.Time { return e.At }

// RakeCollectedEvent is published when rake is taken at showdown.
type RakeCollectedEvent struct {
	Amount int       `json:"amount"`
	At     time.Time `json:"at"`
}

func (e RakeCollectedEvent) EventType() EventType { return EventTypeRakeCollected }
func (e RakeCollectedEvent) Timestamp() time.Time { return e.At }

// Subscriber receives events synchronously, in publication order. A slow
// subscriber stalls the game that published the event.
type Subscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(e Event) { f(e) }

// EventBus is the ordered list of subscribers owned by one game.
type EventBus struct {
	subscribers []Subscriber
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe appends s; subscribers are called in registration order.
func (bus *EventBus) Subscribe(s Subscriber) {
	bus.subscribers = append(bus.subscribers, s)
}

// Unsubscribe removes the first registration of s. Only comparable
// subscribers can be removed.
func (bus *EventBus) Unsubscribe(s Subscriber) {
	for i, sub := range bus.subscribers {
		if sameSubscriber(sub, s) {
			bus.subscribers = slices.Delete(bus.subscribers, i, i+1)
			return
		}
	}
}

func sameSubscriber(a, b Subscriber) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Publish delivers e to every subscriber before returning.
func (bus *EventBus) Publish(e Event) {
	for _, s := range bus.subscribers {
		s.OnEvent(e)
	}
}

// notifier stamps events with the game clock and publishes them.
type notifier struct {
	bus   *EventBus
	clock quartz.Clock
}

func (n *notifier) now() time.Time {
	return n.clock.Now()
}

func (n *notifier) publish(e Event) {
	n.bus.Publish(e)
}

func (n *notifier) stateChanged(s *GameState) {
	n.publish(StateChangedEvent{State: s.Snapshot(), At: n.now()})
}

func (n *notifier) potUpdated(s *GameState) {
	n.publish(PotUpdateEvent{Total: s.Pot.Total(), At: n.now()})
}
