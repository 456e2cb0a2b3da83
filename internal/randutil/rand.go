// Package randutil builds reproducible random sources for decks and bots.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand whose sequence depends only on seed.
func New(seed int64) *rand.Rand {
	return Stream(seed, 0)
}

// Stream returns the n-th independent source derived from seed. Concurrent
// tables in one simulation share a seed and take one stream each.
func Stream(seed int64, n uint64) *rand.Rand {
	base := uint64(seed) + n*goldenRatio64
	return rand.New(rand.NewPCG(splitmix(base), splitmix(base^goldenRatio64)))
}

// Seed returns seed unless it is zero, in which case a time based seed is
// used. Callers log the returned value so runs can be replayed.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func splitmix(x uint64) uint64 {
	x += goldenRatio64
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
