package bot

import (
	rand "math/rand/v2"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/poker"
)

// CallBot checks or calls every street, and shoves unopened pots when short.
type CallBot struct{}

func (CallBot) Decide(v View) Decision {
	if v.StackInBigBlinds() < 10 && v.ToCall == 0 && v.Can(game.ActionAllIn) {
		return Decision{Action: game.ActionAllIn, Reasoning: "shoving with short stack"}
	}
	return v.Passive("call-bot")
}

// FoldBot checks when free and folds to any bet.
type FoldBot struct{}

func (FoldBot) Decide(v View) Decision {
	return v.Fold("fold-bot")
}

// RandBot picks a uniformly random legal action; raises pick a random total
// between the minimum and maximum.
type RandBot struct {
	rng *rand.Rand
}

func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (r *RandBot) Decide(v View) Decision {
	if len(v.Allowed) == 0 {
		return Decision{Action: game.ActionFold, Reasoning: "rand-bot no valid actions"}
	}
	action := v.Allowed[r.rng.IntN(len(v.Allowed))]
	if action != game.ActionRaise {
		return Decision{Action: action, Reasoning: "rand-bot random action"}
	}
	amount := v.MinRaise
	if v.MaxRaise > v.MinRaise {
		amount += r.rng.IntN(v.MaxRaise - v.MinRaise + 1)
	}
	return v.RaiseTo(amount, "rand-bot random raise")
}

// ManiacBot bets and raises most of the time and rarely folds.
type ManiacBot struct {
	rng *rand.Rand
}

func NewManiacBot(rng *rand.Rand) *ManiacBot {
	return &ManiacBot{rng: rng}
}

func (m *ManiacBot) Decide(v View) Decision {
	if v.ToCall == 0 {
		if m.rng.Float64() >= 0.85 {
			return v.Passive("maniac checking")
		}
		if v.StackInBigBlinds() <= 20 || m.rng.Float64() < 0.3 {
			return v.Shove("maniac shove")
		}
		return v.RaiseTo(v.MinRaise+(v.MaxRaise-v.MinRaise)*3/4, "maniac big raise")
	}

	switch r := m.rng.Float64(); {
	case r < 0.4:
		return v.Shove("maniac shove over bet")
	case r < 0.8:
		return v.Passive("maniac call")
	}
	return v.Fold("maniac fold")
}

// ChartBot plays a push-fold chart preflop and checks or calls after.
type ChartBot struct{}

func (ChartBot) Decide(v View) Decision {
	if v.Phase != game.PhasePreFlop || len(v.Hole) != 2 {
		return v.Passive("chart-bot postflop")
	}
	tier := poker.ClassifyStarting(v.Hole[0], v.Hole[1])
	switch {
	case tier == poker.TierPremium && v.StackInBigBlinds() <= 20:
		return v.Shove("chart-bot push " + tier.String())
	case tier == poker.TierPremium:
		return v.RaiseTo(v.Bet+v.ToCall+3*v.BigBlind, "chart-bot raise "+tier.String())
	case tier <= poker.TierPlayable:
		return v.Passive("chart-bot call " + tier.String())
	case v.ToCall <= v.BigBlind/2:
		return v.Passive("chart-bot complete")
	}
	return v.Fold("chart-bot fold " + tier.String())
}
