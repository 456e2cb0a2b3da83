package broadcast

import (
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/poker"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject, data})
	return nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func playHand(t *testing.T, b *Broadcaster) *game.Game {
	t.Helper()
	g := game.New(game.Config{SmallBlind: 5, BigBlind: 10}, game.WithID("t1"))
	g.Subscribe(b)
	require.NoError(t, g.Join(game.NewPlayer("a", "Alice", 100)))
	require.NoError(t, g.Join(game.NewPlayer("b", "Bob", 100)))
	require.NoError(t, g.StartHand())
	snap := g.Snapshot()
	require.NoError(t, g.PerformAction(snap.Players[snap.Action].ID, game.ActionFold, 0))
	return g
}

func TestSubjects(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "holdem.t1.hand_ended", Subject("t1", game.EventTypeHandEnded))
	assert.Equal(t, "holdem.t1.>", GameSubjects("t1"))
}

func TestBroadcasterPublishesInOrder(t *testing.T) {
	t.Parallel()
	pub := &fakePublisher{}
	b := New(pub, "t1", WithLogger(quietLogger()))
	playHand(t, b)

	require.NotEmpty(t, pub.msgs)
	for i, msg := range pub.msgs {
		m, err := Decode(msg.data)
		require.NoError(t, err)
		assert.Equal(t, "t1", m.GameID)
		assert.Equal(t, uint64(i+1), m.Seq)
		assert.Equal(t, Subject("t1", m.Type), msg.subject)
	}

	last, err := Decode(pub.msgs[len(pub.msgs)-1].data)
	require.NoError(t, err)
	assert.Equal(t, game.EventTypeStateChanged, last.Type)

	var ended *Message
	for _, msg := range pub.msgs {
		m, err := Decode(msg.data)
		require.NoError(t, err)
		if m.Type == game.EventTypeHandEnded {
			ended = &m
		}
	}
	require.NotNil(t, ended)
	var he game.HandEndedEvent
	require.NoError(t, ended.Into(&he))
	assert.False(t, he.Showdown)
	assert.Len(t, he.Winners, 1)
	assert.Equal(t, int64(0), b.Dropped())
}

func TestBroadcasterRedactsState(t *testing.T) {
	t.Parallel()
	pub := &fakePublisher{}
	b := New(pub, "t1", WithLogger(quietLogger()))

	g := game.New(game.Config{SmallBlind: 5, BigBlind: 10}, game.WithID("t1"))
	g.Subscribe(b)
	require.NoError(t, g.Join(game.NewPlayer("a", "Alice", 100)))
	require.NoError(t, g.Join(game.NewPlayer("b", "Bob", 100)))
	require.NoError(t, g.StartHand())

	var states int
	for _, msg := range pub.msgs {
		m, err := Decode(msg.data)
		require.NoError(t, err)
		if m.Type != game.EventTypeStateChanged {
			continue
		}
		states++
		var sc game.StateChangedEvent
		require.NoError(t, m.Into(&sc))
		assert.Empty(t, sc.State.Deck)
		for _, p := range sc.State.Players {
			assert.Empty(t, p.HoleCards, p.ID)
		}
	}
	assert.Positive(t, states)

	// The game itself still has the cards.
	snap := g.Snapshot()
	assert.Len(t, snap.Players[0].HoleCards, 2)
	assert.NotEmpty(t, snap.Deck)
}

func TestRedactCopies(t *testing.T) {
	t.Parallel()
	snap := game.Snapshot{
		Players: []game.PlayerSnapshot{{ID: "a", HoleCards: poker.MustParseCards("As Ks")}},
		Deck:    poker.MustParseCards("2c 3c"),
	}
	red := Redact(snap)
	assert.Nil(t, red.Players[0].HoleCards)
	assert.Nil(t, red.Deck)
	assert.Nil(t, red.Waiting)
	assert.Len(t, snap.Players[0].HoleCards, 2, "original untouched")
}

func TestBroadcasterSkip(t *testing.T) {
	t.Parallel()
	pub := &fakePublisher{}
	b := New(pub, "t1", WithLogger(quietLogger()), Skip(game.EventTypeStateChanged, game.EventTypePotUpdate))
	playHand(t, b)

	for _, msg := range pub.msgs {
		m, err := Decode(msg.data)
		require.NoError(t, err)
		assert.NotEqual(t, game.EventTypeStateChanged, m.Type)
		assert.NotEqual(t, game.EventTypePotUpdate, m.Type)
	}
}

func TestBroadcasterCountsFailures(t *testing.T) {
	t.Parallel()
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	b := New(pub, "t1", WithLogger(quietLogger()))

	b.OnEvent(game.PotUpdateEvent{Total: 30, At: time.Now()})
	b.OnEvent(game.RakeCollectedEvent{Amount: 1, At: time.Now()})
	assert.Equal(t, int64(2), b.Dropped())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}

func TestWatchOverNATS(t *testing.T) {
	url := os.Getenv("HOLDEM_NATS_URL")
	if url == "" {
		t.Skip("HOLDEM_NATS_URL not set")
	}
	nc, err := Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	got := make(chan Message, 256)
	sub, err := Watch(nc, "t1", quietLogger(), func(m Message) { got <- m })
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	playHand(t, New(nc, "t1", WithLogger(quietLogger())))
	require.NoError(t, nc.Flush())

	select {
	case m := <-got:
		assert.Equal(t, uint64(1), m.Seq)
		assert.Equal(t, "t1", m.GameID)
	case <-time.After(5 * time.Second):
		t.Fatal("no events received")
	}
}
