package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	chpoker "github.com/chehsunliu/poker"

	"github.com/lox/holdem-engine/poker"
)

// EvalCmd evaluates one hand.
type EvalCmd struct {
	Cards   []string `arg:"" help:"Cards such as As Kd, hole cards first"`
	Lookup  bool     `help:"Use the lookup-table evaluator instead of the reference evaluator"`
	Compare bool     `help:"Cross-check against github.com/chehsunliu/poker"`
}

func (c *EvalCmd) Run() error {
	return c.eval(os.Stdout)
}

func (c *EvalCmd) eval(w io.Writer) error {
	cards, err := poker.ParseCards(strings.Join(c.Cards, " "))
	if err != nil {
		return err
	}
	if len(cards) < 5 || len(cards) > 7 {
		return fmt.Errorf("%w: need 5 to 7 cards, got %d", poker.ErrCardCount, len(cards))
	}

	var ev poker.Evaluator = poker.ReferenceEvaluator{}
	name := "reference"
	if c.Lookup {
		ev, name = poker.LookupEvaluator{}, "lookup"
	}
	res, err := ev.Evaluate(cards[:2], cards[2:])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Hole:  %s\n", poker.FormatCards(cards[:2]))
	fmt.Fprintf(w, "Board: %s\n", poker.FormatCards(cards[2:]))
	fmt.Fprintf(w, "Hand:  %s (%s evaluator, value %d)\n", res, name, res.Value())
	if res.IsRoyalFlush() {
		fmt.Fprintln(w, "Royal flush!")
	}

	if !c.Compare {
		return nil
	}
	oracle := make([]chpoker.Card, len(cards))
	for i, card := range cards {
		oracle[i] = chpoker.NewCard(card.String())
	}
	rank := chpoker.Evaluate(oracle)
	fmt.Fprintf(w, "Oracle: %s (rank %d)\n", chpoker.RankString(rank), rank)
	if got := poker.HandCategory(9 - chpoker.RankClass(rank)); got != res.Category {
		return fmt.Errorf("evaluators disagree: %s vs oracle %s", res.Category, got)
	}
	return nil
}
