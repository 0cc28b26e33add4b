package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Flags returns n presence flags (0 or 1), each set with probability density.
func (r *RNG) Flags(n int, density float64) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		if r.rand.Float64() < density {
			b[i] = 1
		}
	}
	return b
}

// DistinctProducts counts the distinct values of i·j for 1 ≤ i, j ≤ n by brute force.
func DistinctProducts(n uint64) uint64 {
	seen := make(map[uint64]struct{}, n*n/2)
	for i := uint64(1); i <= n; i++ {
		for j := uint64(1); j <= n; j++ {
			seen[i*j] = struct{}{}
		}
	}
	return uint64(len(seen))
}
