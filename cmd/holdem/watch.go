package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/broadcast"
	"github.com/lox/holdem-engine/internal/game"
)

// WatchCmd prints a game's events as they are published.
type WatchCmd struct {
	NATS string `name:"nats" default:"nats://127.0.0.1:4222" help:"NATS server URL"`
	Game string `required:"" help:"Game id to follow"`
}

func (c *WatchCmd) Run(logger *log.Logger) error {
	nc, err := broadcast.Connect(c.NATS)
	if err != nil {
		return err
	}
	defer nc.Close()

	formatter := game.NewEventFormatter(game.FormattingOptions{ShowTimeouts: true, ShowHands: true})
	sub, err := broadcast.Watch(nc, c.Game, logger, func(m broadcast.Message) {
		printMessage(os.Stdout, formatter, m, logger)
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()
	logger.Info("Watching", "game", c.Game, "subject", broadcast.GameSubjects(c.Game))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

// decodeEvent turns a message back into the engine event it carries. State
// and turn events are not printed and decode to nil.
func decodeEvent(m broadcast.Message) (game.Event, error) {
	switch m.Type {
	case game.EventTypeGameStarted:
		return into[game.GameStartedEvent](m)
	case game.EventTypeRoundStarted:
		return into[game.RoundStartedEvent](m)
	case game.EventTypePlayerAction:
		return into[game.PlayerActionEvent](m)
	case game.EventTypeHandEnded:
		return into[game.HandEndedEvent](m)
	case game.EventTypeWaitingListJoined:
		return into[game.WaitingListJoinedEvent](m)
	case game.EventTypeRakeCollected:
		return into[game.RakeCollectedEvent](m)
	}
	return nil, nil
}

func into[T game.Event](m broadcast.Message) (game.Event, error) {
	var v T
	if err := m.Into(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func printMessage(w io.Writer, f *game.EventFormatter, m broadcast.Message, logger *log.Logger) {
	e, err := decodeEvent(m)
	if err != nil {
		logger.Warn("Undecodable event", "type", m.Type, "seq", m.Seq, "error", err)
		return
	}
	if e == nil {
		return
	}
	if line := f.Format(e); line != "" {
		fmt.Fprintln(w, line)
	}
}
