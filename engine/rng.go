package engine

import (
	"math/rand"
	"sort"
)

// RNG is the seeded source behind random walks. A walk is reproducible from
// the seed, and the draw count tells how far into the sequence it got.
type RNG struct {
	seed  int64
	r     *rand.Rand
	draws int64
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewSource(seed))}
}

// Pick draws an index with probability proportional to its weight.
// Weights must be positive and there must be at least one.
func (g *RNG) Pick(weights []int) int {
	bounds := make([]int, len(weights))
	sum := 0
	for i, w := range weights {
		sum += w
		bounds[i] = sum
	}
	g.draws++
	n := g.r.Intn(sum)
	// First bound strictly above n.
	return sort.SearchInts(bounds, n+1)
}

func (g *RNG) Seed() int64  { return g.seed }
func (g *RNG) Draws() int64 { return g.draws }
