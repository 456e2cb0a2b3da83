package poker

import "slices"

// ReferenceEvaluator finds the best hand by direct inspection of the cards:
// flush and straight detection first, then rank multiplicities. It is the
// authoritative evaluator; LookupEvaluator must agree with it.
type ReferenceEvaluator struct{}

// Evaluate returns the best five card hand formed from hole and board.
func (ReferenceEvaluator) Evaluate(hole, board []Card) (HandResult, error) {
	cards, err := gather(hole, board)
	if err != nil {
		return HandResult{}, err
	}
	return bestHand(cards), nil
}

func bestHand(cards []Card) HandResult {
	sorted := slices.Clone(cards)
	sortDescending(sorted)

	var suited [4][]Card
	for _, c := range sorted {
		suited[c.Suit] = append(suited[c.Suit], c)
	}
	var flush []Card
	for _, s := range suited {
		if len(s) >= 5 {
			flush = s
		}
	}

	if flush != nil {
		if run, ok := findStraight(flush); ok {
			return newResult(StraightFlush, run)
		}
	}

	groups := groupByRank(sorted)
	top := groups[0]
	switch {
	case len(top) == 4:
		return newResult(FourOfAKind, withKickers(top, sorted))
	case len(top) == 3 && len(groups) > 1 && len(groups[1]) >= 2:
		return newResult(FullHouse, append(slices.Clone(top), groups[1][:2]...))
	case flush != nil:
		return newResult(Flush, flush[:5])
	}

	if run, ok := findStraight(sorted); ok {
		return newResult(Straight, run)
	}

	switch {
	case len(top) == 3:
		return newResult(ThreeOfAKind, withKickers(top, sorted))
	case len(top) == 2 && len(groups[1]) == 2:
		return newResult(TwoPair, withKickers(append(slices.Clone(top), groups[1]...), sorted))
	case len(top) == 2:
		return newResult(OnePair, withKickers(top, sorted))
	}
	return newResult(HighCard, sorted[:5])
}

// sortDescending orders by rank, high first. Suit breaks ties so results are
// deterministic.
func sortDescending(cards []Card) {
	slices.SortFunc(cards, func(a, b Card) int {
		if a.Rank != b.Rank {
			return int(b.Rank) - int(a.Rank)
		}
		return int(b.Suit) - int(a.Suit)
	})
}

// groupByRank splits rank-sorted cards into same-rank groups ordered by group
// size, then rank.
func groupByRank(sorted []Card) [][]Card {
	var groups [][]Card
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].Rank == sorted[i].Rank {
			j++
		}
		groups = append(groups, sorted[i:j])
		i = j
	}
	slices.SortStableFunc(groups, func(a, b []Card) int {
		return len(b) - len(a)
	})
	return groups
}

// withKickers tops up base to five cards with the highest cards of other ranks.
func withKickers(base []Card, sorted []Card) []Card {
	hand := slices.Clone(base)
	for _, c := range sorted {
		if len(hand) == 5 {
			break
		}
		if !slices.ContainsFunc(base, func(b Card) bool { return b.Rank == c.Rank }) {
			hand = append(hand, c)
		}
	}
	return hand
}

// findStraight returns the highest five card run in rank-sorted cards. The
// wheel is returned as 5-4-3-2-A.
func findStraight(sorted []Card) ([]Card, bool) {
	var byRank [Ace + 1]*Card
	for i := range sorted {
		if byRank[sorted[i].Rank] == nil {
			byRank[sorted[i].Rank] = &sorted[i]
		}
	}

	for high := Ace; high >= Five; high-- {
		run := make([]Card, 0, 5)
		for r := high; r > high-5; r-- {
			rank := r
			if rank == 1 {
				rank = Ace
			}
			c := byRank[rank]
			if c == nil {
				break
			}
			run = append(run, *c)
		}
		if len(run) == 5 {
			return run, true
		}
	}
	return nil, false
}

func newResult(category HandCategory, cards []Card) HandResult {
	h := HandResult{Category: category}
	copy(h.Cards[:], cards)
	return h
}
