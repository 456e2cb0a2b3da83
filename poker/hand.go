package poker

import (
	"errors"
	"fmt"
)

// ErrCardCount is returned when an evaluator receives fewer than five or more
// than seven cards.
var ErrCardCount = errors.New("wrong number of cards")

// HandCategory enumerates hand classes from weakest to strongest.
type HandCategory uint8

const (
	HighCard HandCategory = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"High Card",
	"One Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
}

func (c HandCategory) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// HandResult is an evaluated five card hand. Cards are ordered for
// tie-breaking: grouped cards first (largest group, then higher rank), then
// kickers high to low. In a five-high straight the Ace is last.
type HandResult struct {
	Category HandCategory
	Cards    [5]Card
}

// Value packs the category and the five tie-break ranks into one integer.
// A larger value is a stronger hand; equal values split the pot.
func (h HandResult) Value() uint32 {
	v := uint32(h.Category)
	for _, c := range h.Cards {
		v = v<<4 | uint32(c.Rank)
	}
	return v
}

// Compare returns a positive number when h beats other, negative when it
// loses and zero when the hands tie.
func (h HandResult) Compare(other HandResult) int {
	a, b := h.Value(), other.Value()
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// IsRoyalFlush reports whether the hand is an Ace-high straight flush.
func (h HandResult) IsRoyalFlush() bool {
	return h.Category == StraightFlush && h.Cards[0].Rank == Ace
}

// HighRank is the rank of the first tie-break card: the top of a straight,
// the rank of the largest group, or the highest card.
func (h HandResult) HighRank() Rank {
	return h.Cards[0].Rank
}

func (h HandResult) String() string {
	name := h.Category.String()
	if h.IsRoyalFlush() {
		name = "Royal Flush"
	}
	return fmt.Sprintf("%s (%s)", name, FormatCards(h.Cards[:]))
}

// Evaluator maps hole cards plus board cards (five to seven cards in total)
// to the best five card hand.
type Evaluator interface {
	Evaluate(hole, board []Card) (HandResult, error)
}

// gather validates the combined card list and returns it as one slice.
func gather(hole, board []Card) ([]Card, error) {
	n := len(hole) + len(board)
	if n < 5 || n > 7 {
		return nil, fmt.Errorf("%w: got %d, want 5 to 7", ErrCardCount, n)
	}

	cards := make([]Card, 0, n)
	var seen uint64
	for _, set := range [][]Card{hole, board} {
		for _, c := range set {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: %v", ErrInvalidCard, c)
			}
			bit := uint64(1) << c.index()
			if seen&bit != 0 {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
			}
			seen |= bit
			cards = append(cards, c)
		}
	}
	return cards, nil
}
