package populate

/* rng.go contains the deterministic per-cell random number generator used
by the random placement policy. */

import (
	"math"
)

var xorshiftMaxUint = float64(math.MaxUint32)

// rng is an xorshift random number generator. It is cheap enough to create
// one per cell, which is how random generation keeps its draws independent
// of worker scheduling. It is not thread safe.
type rng struct {
	x, y, z, w uint32
}

// newRNG creates a generator whose full state is expanded from seed with
// splitmix64 steps, so that even adjacent seeds give unrelated streams.
func newRNG(seed uint64) *rng {
	s0 := splitmix64(seed)
	s1 := splitmix64(s0)
	gen := &rng{uint32(s0), uint32(s0 >> 32), uint32(s1), uint32(s1 >> 32)}
	if gen.x|gen.y|gen.z|gen.w == 0 {
		// xorshift generators cannot leave the all-zero state.
		gen.w = 1
	}
	return gen
}

// cellSeed combines the caller's seed, the partition identifier, and a
// cell-local id into the seed of that cell's stream. Each cell's stream
// depends only on these three values: re-running with the same seed and
// partitioning reproduces every position, and changing the number of cells
// does not perturb the streams of the cells that remain.
func cellSeed(seed uint64, part, cell int) uint64 {
	return splitmix64(splitmix64(seed^uint64(part)) + uint64(cell))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// uniform generates a single random number in the range [0, 1).
func (gen *rng) uniform() float64 {
	t := gen.x ^ (gen.x << 11)
	gen.x, gen.y, gen.z = gen.y, gen.z, gen.w
	gen.w = gen.w ^ (gen.w >> 19) ^ (t ^ (t >> 8))
	res := float64(math.MaxUint32-gen.w) / xorshiftMaxUint
	if res == 1.0 {
		return gen.uniform()
	}
	return res
}

// uniformRange generates a single random number in the range [low, high).
func (gen *rng) uniformRange(low, high float64) float64 {
	return low + gen.uniform()*(high-low)
}
