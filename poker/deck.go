package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrDuplicateCard is returned when a card appears more than once.
var ErrDuplicateCard = errors.New("duplicate card")

// Deck is a 52-card deck that deals without replacement.
//
// A deck built with NewDeck reshuffles on every Reset. A stacked deck keeps a
// fixed arrangement and restores it on Reset, which makes hands reproducible.
type Deck struct {
	cards   [52]Card
	base    [52]Card // arrangement restored by Reset
	next    int
	rng     *rand.Rand
	shuffle bool
}

// NewDeck creates a shuffled deck that draws randomness from rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng, shuffle: true}
	d.base = canonical()
	d.Reset()
	return d
}

// NewStackedDeck creates an unshuffled deck that deals top first, in order,
// followed by the remaining cards in canonical order. Duplicate or invalid
// cards in top cause a panic; stacked decks are built from literal card lists.
func NewStackedDeck(top ...Card) *Deck {
	d := &Deck{}
	var seen [52]bool
	i := 0
	for _, c := range top {
		if !c.Valid() {
			panic(fmt.Errorf("%w: %v", ErrInvalidCard, c))
		}
		if seen[c.index()] {
			panic(fmt.Errorf("%w: %s", ErrDuplicateCard, c))
		}
		seen[c.index()] = true
		d.base[i] = c
		i++
	}
	for _, c := range canonical() {
		if !seen[c.index()] {
			d.base[i] = c
			i++
		}
	}
	d.Reset()
	return d
}

// RestoreDeck rebuilds a deck whose undealt cards are remaining, in order.
// The restored deck keeps dealing remaining first; after the next Reset it
// behaves like NewDeck(rng), or like a stacked deck when rng is nil.
func RestoreDeck(remaining []Card, rng *rand.Rand) (*Deck, error) {
	if len(remaining) > 52 {
		return nil, fmt.Errorf("%w: %d cards", ErrCardCount, len(remaining))
	}
	var seen [52]bool
	for _, c := range remaining {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCard, c)
		}
		if seen[c.index()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c.index()] = true
	}

	var d *Deck
	if rng != nil {
		d = NewDeck(rng)
	} else {
		d = NewStackedDeck()
	}

	// Dealt cards sit before next, undealt cards after it.
	d.next = 52 - len(remaining)
	i := 0
	for _, c := range canonical() {
		if !seen[c.index()] {
			d.cards[i] = c
			i++
		}
	}
	copy(d.cards[d.next:], remaining)
	return d, nil
}

func canonical() [52]Card {
	var cards [52]Card
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards[i] = NewCard(rank, suit)
			i++
		}
	}
	return cards
}

// Shuffle shuffles the undealt and dealt cards together using Fisher-Yates
// and rewinds the deck.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Reset repopulates all 52 cards. Shuffled decks are reshuffled, stacked
// decks return to their fixed arrangement.
func (d *Deck) Reset() {
	d.cards = d.base
	d.next = 0
	if d.shuffle {
		d.Shuffle()
	}
}

// Deal removes and returns the top card. The boolean is false once the deck
// is exhausted.
func (d *Deck) Deal() (Card, bool) {
	if d.next >= len(d.cards) {
		return Card{}, false
	}
	c := d.cards[d.next]
	d.next++
	return c, true
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Cards returns a copy of the undealt cards in dealing order.
func (d *Deck) Cards() []Card {
	out := make([]Card, d.Remaining())
	copy(out, d.cards[d.next:])
	return out
}
