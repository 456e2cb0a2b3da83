package poker

import (
	"math"
	"slices"
)

// LookupEvaluator scores every five card subset with precomputed tables
// (Cactus Kev encoding: rank bit, suit bit, rank nibble and a rank prime per
// card). Scores run from 1 (royal flush) to 7462 (7-5-4-3-2 offsuit); the
// best score is converted back into a HandResult so callers compare results
// the same way for both evaluators.
type LookupEvaluator struct{}

const classCount = 7462

var rankPrimes = [13]uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41}

type rankClass struct {
	category HandCategory
	ranks    [5]Rank
}

// Tables are filled once by init and only read afterwards, so they are safe
// to share between goroutines.
var (
	flushScores   [1 << 13]uint16
	productScores = make(map[uint32]uint16, classCount-1287)
	classes       [classCount + 1]rankClass
	subsets       = [8][][5]uint8{5: combinations(5), 6: combinations(6), 7: combinations(7)}
)

func init() {
	buildTables()
}

type tableEntry struct {
	class rankClass
	flush bool
	key   uint32
}

func buildTables() {
	entries := make([]tableEntry, 0, classCount)

	// Every rank multiset without five of a kind, suits mixed.
	for a := Ace; a >= Two; a-- {
		for b := a; b >= Two; b-- {
			for c := b; c >= Two; c-- {
				for d := c; d >= Two; d-- {
					for e := d; e >= Two; e-- {
						if a == e {
							continue
						}
						ranks := [5]Rank{a, b, c, d, e}
						product := uint32(1)
						for _, r := range ranks {
							product *= rankPrimes[r-Two]
						}
						entries = append(entries, tableEntry{class: classify(ranks, false), key: product})
					}
				}
			}
		}
	}

	// Five distinct ranks of one suit.
	for a := Ace; a >= Two; a-- {
		for b := a - 1; b >= Two; b-- {
			for c := b - 1; c >= Two; c-- {
				for d := c - 1; d >= Two; d-- {
					for e := d - 1; e >= Two; e-- {
						ranks := [5]Rank{a, b, c, d, e}
						var mask uint32
						for _, r := range ranks {
							mask |= 1 << (r - Two)
						}
						entries = append(entries, tableEntry{class: classify(ranks, true), flush: true, key: mask})
					}
				}
			}
		}
	}

	slices.SortFunc(entries, func(x, y tableEntry) int {
		vx, vy := x.class.value(), y.class.value()
		switch {
		case vx > vy:
			return -1
		case vx < vy:
			return 1
		}
		return 0
	})

	for i, e := range entries {
		score := uint16(i + 1)
		classes[score] = e.class
		if e.flush {
			flushScores[e.key] = score
		} else {
			productScores[e.key] = score
		}
	}
}

// classify names the hand formed by five ranks sorted high to low.
func classify(ranks [5]Rank, suited bool) rankClass {
	var count [Ace + 1]int
	for _, r := range ranks {
		count[r]++
	}

	ordered := ranks
	slices.SortStableFunc(ordered[:], func(x, y Rank) int {
		return count[y] - count[x]
	})

	switch {
	case count[ordered[0]] == 4:
		return rankClass{FourOfAKind, ordered}
	case count[ordered[0]] == 3 && count[ordered[3]] == 2:
		return rankClass{FullHouse, ordered}
	case count[ordered[0]] == 3:
		return rankClass{ThreeOfAKind, ordered}
	case count[ordered[0]] == 2 && count[ordered[2]] == 2:
		return rankClass{TwoPair, ordered}
	case count[ordered[0]] == 2:
		return rankClass{OnePair, ordered}
	}

	straight := ranks[0]-ranks[4] == 4
	if ranks == [5]Rank{Ace, Five, Four, Three, Two} {
		straight = true
		ordered = [5]Rank{Five, Four, Three, Two, Ace}
	}
	switch {
	case straight && suited:
		return rankClass{StraightFlush, ordered}
	case suited:
		return rankClass{Flush, ordered}
	case straight:
		return rankClass{Straight, ordered}
	}
	return rankClass{HighCard, ordered}
}

func (rc rankClass) value() uint32 {
	v := uint32(rc.category)
	for _, r := range rc.ranks {
		v = v<<4 | uint32(r)
	}
	return v
}

// combinations lists every 5-element index subset of n cards.
func combinations(n int) [][5]uint8 {
	var out [][5]uint8
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						out = append(out, [5]uint8{uint8(a), uint8(b), uint8(c), uint8(d), uint8(e)})
					}
				}
			}
		}
	}
	return out
}

// encode packs a card as xxxbbbbb bbbbbbbb cdhsrrrr xxpppppp.
func encode(c Card) uint32 {
	r := uint32(c.Rank - Two)
	return 1<<(16+r) | 1<<(12+uint32(c.Suit)) | r<<8 | rankPrimes[r]
}

func score5(a, b, c, d, e uint32) uint16 {
	if a&b&c&d&e&0xF000 != 0 {
		return flushScores[(a|b|c|d|e)>>16]
	}
	return productScores[(a&0xFF)*(b&0xFF)*(c&0xFF)*(d&0xFF)*(e&0xFF)]
}

// Evaluate returns the best five card hand formed from hole and board.
func (LookupEvaluator) Evaluate(hole, board []Card) (HandResult, error) {
	cards, err := gather(hole, board)
	if err != nil {
		return HandResult{}, err
	}

	var enc [7]uint32
	for i, c := range cards {
		enc[i] = encode(c)
	}

	best := uint16(math.MaxUint16)
	var bestSet [5]uint8
	for _, s := range subsets[len(cards)] {
		score := score5(enc[s[0]], enc[s[1]], enc[s[2]], enc[s[3]], enc[s[4]])
		if score < best {
			best = score
			bestSet = s
		}
	}

	var chosen [5]Card
	for i, idx := range bestSet {
		chosen[i] = cards[idx]
	}
	return rebuild(best, chosen), nil
}

// rebuild orders the chosen cards to match the class tie-break ranks.
func rebuild(score uint16, chosen [5]Card) HandResult {
	class := classes[score]
	h := HandResult{Category: class.category}
	var used [5]bool
	for i, r := range class.ranks {
		for j, c := range chosen {
			if !used[j] && c.Rank == r {
				used[j] = true
				h.Cards[i] = c
				break
			}
		}
	}
	return h
}
