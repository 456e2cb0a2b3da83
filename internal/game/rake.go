package game

import (
	"fmt"
	"math"
)

// RakeStrategy computes the house cut of a showdown pot.
type RakeStrategy interface {
	Rake(pot int) int
}

// NoRake takes nothing.
type NoRake struct{}

func (NoRake) Rake(int) int { return 0 }

// PercentageRake takes a fraction of the pot, rounded down, up to a cap. A
// cap of zero means uncapped.
type PercentageRake struct {
	percent float64
	limit   int
}

// NewPercentageRake validates percent in [0, 1) and limit >= 0.
func NewPercentageRake(percent float64, limit int) (PercentageRake, error) {
	if percent < 0 || percent >= 1 {
		return PercentageRake{}, fmt.Errorf("rake percent %v outside [0, 1)", percent)
	}
	if limit < 0 {
		return PercentageRake{}, fmt.Errorf("rake cap %d is negative", limit)
	}
	return PercentageRake{percent: percent, limit: limit}, nil
}

func (r PercentageRake) Rake(pot int) int {
	if pot <= 0 {
		return 0
	}
	// The epsilon keeps 0.29 * 100 at 29 rather than 28.999...
	rake := int(math.Floor(float64(pot)*r.percent + 1e-9))
	if r.limit > 0 {
		rake = min(rake, r.limit)
	}
	return rake
}
