package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/store"
	"github.com/lox/holdem-engine/poker"
)

// ReplayCmd prints a stored snapshot, or lists stored games.
type ReplayCmd struct {
	Store string `required:"" help:"Snapshot store URL"`
	Game  string `help:"Game id to show; lists games when empty"`
	JSON  bool   `name:"json" help:"Print the raw snapshot as JSON"`
}

func (c *ReplayCmd) Run() error {
	st, err := store.Open(c.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return c.replay(context.Background(), st, os.Stdout)
}

func (c *ReplayCmd) replay(ctx context.Context, st store.Store, w io.Writer) error {
	if c.Game == "" {
		ids, err := st.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	}

	snap, err := st.Load(ctx, c.Game)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Game, err)
	}
	if c.JSON {
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	fmt.Fprint(w, renderSnapshot(snap))
	return nil
}

var (
	actingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	foldedStyle = lipgloss.NewStyle().Faint(true)
)

func renderSnapshot(snap game.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf(" Game %s ", snap.GameID)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Hand #%d  %s  Blinds %d/%d\n", snap.HandNumber, snap.Phase, snap.SmallBlind, snap.BigBlind)
	board := "-"
	if len(snap.Board) > 0 {
		board = poker.FormatCards(snap.Board)
	}
	fmt.Fprintf(&b, "Board: %s   Pot: %d\n\n", board, snap.Pot.Total)

	for i, p := range snap.Players {
		marker := "  "
		if i == snap.Dealer {
			marker = "D "
		}
		cards := "-- --"
		if len(p.HoleCards) > 0 {
			cards = poker.FormatCards(p.HoleCards)
		}
		line := fmt.Sprintf("%s%-16s %6d chips  bet %-5d %-11s %s", marker, p.Name, p.Chips, p.Bet, p.Status, cards)
		switch {
		case i == snap.Action && snap.Phase.Betting():
			line = actingStyle.Render(line + "  <- to act")
		case !p.Status.InHand():
			line = foldedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, p := range snap.Waiting {
		fmt.Fprintf(&b, "  %-16s %6d chips  waiting\n", p.Name, p.Chips)
	}
	return b.String()
}
