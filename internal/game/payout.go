package game

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/poker"
)

// Payout is the result of settling a pot.
type Payout struct {
	// Winners lists every player who received chips, in seat order rather
	// than by hand strength. Hands holds the strengths when order matters.
	Winners []string
	Payouts map[string]int
	// Hands holds the evaluated hand of every showdown player.
	Hands map[string]poker.HandResult
	Rake  int
}

// PayoutCalculator distributes a pot at showdown, building side pots from
// per-player contributions.
type PayoutCalculator struct {
	evaluator poker.Evaluator
	rake      RakeStrategy
	notify    *notifier
}

// NewPayoutCalculator creates a calculator. A nil rake means NoRake.
func NewPayoutCalculator(evaluator poker.Evaluator, rake RakeStrategy, bus *EventBus, clock quartz.Clock) *PayoutCalculator {
	if rake == nil {
		rake = NoRake{}
	}
	return &PayoutCalculator{
		evaluator: evaluator,
		rake:      rake,
		notify:    &notifier{bus: bus, clock: clock},
	}
}

type contender struct {
	player *Player
	hand   poker.HandResult
}

// Calculate works out who wins what without touching any stacks.
//
// Rake is taken first, from the lowest layers up, so the main pot pays it
// before any side pot does; like odd chips going out in seat order, this is
// a simplification over proportional rake. Contributions are then
// swept in layers: for each distinct contribution level the layer holds
// (level - previous level) from every player who put in at least that level.
// A layer goes to the best hand among showdown players who reached the
// level; folded players fund layers but never win them. A layer that no
// showdown player reached goes to the best hand overall. Split layers hand
// out odd chips one at a time in seat order.
func (c *PayoutCalculator) Calculate(players []*Player, board []poker.Card, contributions map[string]int) (Payout, error) {
	out := Payout{
		Payouts: make(map[string]int),
		Hands:   make(map[string]poker.HandResult),
	}

	total := 0
	for _, amount := range contributions {
		total += amount
	}
	if total == 0 {
		return out, nil
	}
	out.Rake = c.rake.Rake(total)

	var contenders []contender
	for _, p := range players {
		if !p.status.InHand() {
			continue
		}
		hand, err := c.evaluator.Evaluate(p.hole, board)
		if err != nil {
			return Payout{}, fmt.Errorf("evaluating %s: %w", p.id, err)
		}
		contenders = append(contenders, contender{player: p, hand: hand})
		out.Hands[p.id] = hand
	}
	if len(contenders) == 0 {
		return Payout{}, fmt.Errorf("%w: no player left to award the pot to", ErrNotEnoughPlayers)
	}
	tiers := rankTiers(contenders)

	levels := make([]int, 0, len(contributions))
	for _, amount := range contributions {
		if amount > 0 {
			levels = append(levels, amount)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	rakeLeft := out.Rake
	previous := 0
	for _, level := range levels {
		funders := 0
		for _, amount := range contributions {
			if amount >= level {
				funders++
			}
		}
		layer := (level - previous) * funders
		previous = level

		taken := min(rakeLeft, layer)
		rakeLeft -= taken
		layer -= taken
		if layer == 0 {
			continue
		}

		winners := layerWinners(tiers, contributions, level)
		share, odd := layer/len(winners), layer%len(winners)
		for i, w := range winners {
			out.Payouts[w.id] += share
			if i < odd {
				out.Payouts[w.id]++
			}
		}
	}

	for _, p := range players {
		if out.Payouts[p.id] > 0 {
			out.Winners = append(out.Winners, p.id)
		}
	}
	return out, nil
}

// rankTiers groups contenders by equal hand strength, strongest first. Seat
// order is kept inside a tier.
func rankTiers(contenders []contender) [][]*Player {
	sorted := slices.Clone(contenders)
	slices.SortStableFunc(sorted, func(a, b contender) int {
		return cmp.Compare(b.hand.Value(), a.hand.Value())
	})

	var tiers [][]*Player
	for i, ct := range sorted {
		if i == 0 || sorted[i-1].hand.Compare(ct.hand) != 0 {
			tiers = append(tiers, nil)
		}
		tiers[len(tiers)-1] = append(tiers[len(tiers)-1], ct.player)
	}
	return tiers
}

func layerWinners(tiers [][]*Player, contributions map[string]int, level int) []*Player {
	for _, tier := range tiers {
		var eligible []*Player
		for _, p := range tier {
			if contributions[p.id] >= level {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) > 0 {
			return eligible
		}
	}
	return tiers[0]
}

// Settle calculates the payout for the state's pot, credits the winners and
// publishes the rake. The pot itself is left for the caller to reset.
func (c *PayoutCalculator) Settle(s *GameState) (Payout, error) {
	out, err := c.Calculate(s.Players, s.Board, s.Pot.Contributions())
	if err != nil {
		return Payout{}, err
	}
	if out.Rake > 0 {
		c.notify.publish(RakeCollectedEvent{Amount: out.Rake, At: c.notify.now()})
	}
	for _, p := range s.Players {
		if amount := out.Payouts[p.id]; amount > 0 {
			p.win(amount)
		}
	}
	return out, nil
}
