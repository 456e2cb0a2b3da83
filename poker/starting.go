package poker

// StartingTier buckets two hole cards by preflop strength. Lower is stronger.
type StartingTier uint8

const (
	TierPremium StartingTier = iota
	TierStrong
	TierPlayable
	TierSpeculative
	TierWeak
)

func (t StartingTier) String() string {
	switch t {
	case TierPremium:
		return "premium"
	case TierStrong:
		return "strong"
	case TierPlayable:
		return "playable"
	case TierSpeculative:
		return "speculative"
	default:
		return "weak"
	}
}

// ClassifyStarting places two hole cards into a StartingTier.
//
//	premium:     JJ+, AK
//	strong:      TT, AQ, AJ
//	playable:    77-99, suited broadway
//	speculative: 22-66, suited connectors and one-gappers
//	weak:        everything else
func ClassifyStarting(a, b Card) StartingTier {
	hi, lo := a.Rank, b.Rank
	if lo > hi {
		hi, lo = lo, hi
	}
	pair := hi == lo
	suited := a.Suit == b.Suit

	switch {
	case pair && lo >= Jack, hi == Ace && lo == King:
		return TierPremium
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return TierStrong
	case pair && lo >= Seven, suited && lo >= Ten:
		return TierPlayable
	case pair, suited && hi-lo <= 2:
		return TierSpeculative
	}
	return TierWeak
}
