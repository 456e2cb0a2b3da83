package game

// Pot tracks every chip committed this hand and who committed it. The
// contribution map is kept for the whole hand, not per street, because side
// pots are built from it.
type Pot struct {
	total         int
	contributions map[string]int
}

// NewPot returns an empty pot.
func NewPot() *Pot {
	return &Pot{contributions: make(map[string]int)}
}

// Add records amount from playerID. Non-positive amounts are ignored.
func (p *Pot) Add(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	p.total += amount
	p.contributions[playerID] += amount
}

// Total always equals the sum of the contributions.
func (p *Pot) Total() int {
	return p.total
}

// Contribution returns how much playerID has put in this hand.
func (p *Pot) Contribution(playerID string) int {
	return p.contributions[playerID]
}

// Contributions returns a copy of the contribution map.
func (p *Pot) Contributions() map[string]int {
	out := make(map[string]int, len(p.contributions))
	for id, amount := range p.contributions {
		out[id] = amount
	}
	return out
}

// Reset empties the pot.
func (p *Pot) Reset() {
	p.total = 0
	clear(p.contributions)
}
