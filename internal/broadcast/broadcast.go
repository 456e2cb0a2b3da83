// Package broadcast publishes game events to NATS so spectators and bots in
// other processes can follow a table.
//
// Events are JSON envelopes published on holdem.<game id>.<event type>.
// Hole cards and the remaining deck are stripped from state snapshots
// before they leave the process; showdown hands arrive with hand_ended.
package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/lox/holdem-engine/internal/game"
)

// SubjectPrefix is the first token of every subject.
const SubjectPrefix = "holdem"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher is the part of *nats.Conn the broadcaster needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope wraps every published event.
type Envelope struct {
	GameID string         `json:"game_id"`
	Seq    uint64         `json:"seq"`
	Type   game.EventType `json:"type"`
	At     time.Time      `json:"at"`
	Event  game.Event     `json:"event"`
}

// Subject returns the subject events of type et for gameID are published on.
func Subject(gameID string, et game.EventType) string {
	return SubjectPrefix + "." + gameID + "." + string(et)
}

// GameSubjects matches every event of one game.
func GameSubjects(gameID string) string {
	return SubjectPrefix + "." + gameID + ".>"
}

// Broadcaster is a game.Subscriber that forwards events to a Publisher.
type Broadcaster struct {
	pub    Publisher
	gameID string
	skip   map[game.EventType]bool
	logger *log.Logger

	mu      sync.Mutex
	seq     uint64
	dropped atomic.Int64
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithLogger sets the logger used for publish failures.
func WithLogger(logger *log.Logger) Option {
	return func(b *Broadcaster) { b.logger = logger }
}

// Skip stops events of the given types from being published.
func Skip(types ...game.EventType) Option {
	return func(b *Broadcaster) {
		for _, t := range types {
			b.skip[t] = true
		}
	}
}

// New creates a broadcaster for one game.
func New(pub Publisher, gameID string, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		pub:    pub,
		gameID: gameID,
		skip:   make(map[game.EventType]bool),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithPrefix("broadcast").With("game_id", gameID)
	return b
}

// Attach subscribes a new broadcaster to g.
func Attach(g *game.Game, pub Publisher, opts ...Option) *Broadcaster {
	b := New(pub, g.ID(), opts...)
	g.Subscribe(b)
	return b
}

// Connect dials a NATS server.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("holdem-engine"))
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", url)
	}
	return nc, nil
}

// OnEvent publishes e. Failures are logged and counted; the game never sees
// them.
func (b *Broadcaster) OnEvent(e game.Event) {
	if b.skip[e.EventType()] {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++

	data, err := Encode(b.gameID, b.seq, e)
	if err == nil {
		err = b.pub.Publish(Subject(b.gameID, e.EventType()), data)
	}
	if err != nil {
		b.dropped.Add(1)
		b.logger.Warn("Failed to publish event", "type", e.EventType(), "error", err)
	}
}

// Dropped returns how many events failed to publish.
func (b *Broadcaster) Dropped() int64 {
	return b.dropped.Load()
}

// Encode builds the envelope for e, redacting private state.
func Encode(gameID string, seq uint64, e game.Event) ([]byte, error) {
	if sc, ok := e.(game.StateChangedEvent); ok {
		sc.State = Redact(sc.State)
		e = sc
	}
	data, err := json.Marshal(Envelope{
		GameID: gameID,
		Seq:    seq,
		Type:   e.EventType(),
		At:     e.Timestamp(),
		Event:  e,
	})
	return data, errors.Wrapf(err, "encoding %s", e.EventType())
}

// Redact returns a copy of snap without hole cards or the undealt deck.
func Redact(snap game.Snapshot) game.Snapshot {
	snap.Deck = nil
	snap.Players = redactPlayers(snap.Players)
	snap.Waiting = redactPlayers(snap.Waiting)
	return snap
}

func redactPlayers(players []game.PlayerSnapshot) []game.PlayerSnapshot {
	if players == nil {
		return nil
	}
	out := make([]game.PlayerSnapshot, len(players))
	for i, p := range players {
		p.HoleCards = nil
		out[i] = p
	}
	return out
}

// Message is a received envelope with the event left undecoded.
type Message struct {
	GameID string              `json:"game_id"`
	Seq    uint64              `json:"seq"`
	Type   game.EventType      `json:"type"`
	At     time.Time           `json:"at"`
	Event  jsoniter.RawMessage `json:"event"`
}

// Decode parses an envelope.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, errors.Wrap(err, "decoding envelope")
	}
	return m, nil
}

// Into decodes the event payload into v.
func (m Message) Into(v any) error {
	return errors.Wrapf(json.Unmarshal(m.Event, v), "decoding %s", m.Type)
}

// Watch calls fn for every event of gameID until the subscription is
// drained. Messages that fail to decode are logged and skipped.
func Watch(nc *nats.Conn, gameID string, logger *log.Logger, fn func(Message)) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(GameSubjects(gameID), func(msg *nats.Msg) {
		m, err := Decode(msg.Data)
		if err != nil {
			logger.Warn("Dropping message", "subject", msg.Subject, "error", err)
			return
		}
		fn(m)
	})
	return sub, errors.Wrapf(err, "subscribing to %s", gameID)
}
