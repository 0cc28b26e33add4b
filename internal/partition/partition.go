// Package partition splits the triangular half of the n×n table among ranks.
//
// T = n(n+1)/2 cells are divided so that every rank owns ⌊T/P⌋ or ⌈T/P⌉
// cells; the lowest T mod P ranks take the extra cell. Rank r's slice starts
// at the sum of the weights of ranks 0..r-1 in canonical enumeration order.
package partition

import (
	"errors"
	"fmt"

	"github.com/TyllerAllen/CP431-FinalProject/internal/triangle"
)

// MaxN is the largest table dimension whose product range [0, n²] is
// addressable as an int index.
const MaxN = 3037000499 // ⌊√MaxInt64⌋

var (
	// ErrInvalidSize is returned when n is outside [1, MaxN].
	ErrInvalidSize = errors.New("partition: invalid table size")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("partition: invalid worker count")

	// ErrRankOutOfRange is returned for a rank outside [0, P).
	ErrRankOutOfRange = errors.New("partition: rank out of range")
)

// Plan is the immutable weight vector of a run.
type Plan struct {
	n       uint64
	weights []uint64
	offsets []uint64 // prefix sums; offsets[P] == T
}

// New computes the plan for an n×n table split across p ranks.
// p may exceed T; the surplus ranks get weight 0.
func New(n uint64, p int) (*Plan, error) {
	if n < 1 || n > MaxN {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	if p < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, p)
	}

	total := triangle.Triangular(n)
	base := total / uint64(p)
	rem := total % uint64(p)

	weights := make([]uint64, p)
	offsets := make([]uint64, p+1)
	for r := range weights {
		weights[r] = base
		if uint64(r) < rem {
			weights[r]++
		}
		offsets[r+1] = offsets[r] + weights[r]
	}

	return &Plan{n: n, weights: weights, offsets: offsets}, nil
}

// N returns the table dimension.
func (p *Plan) N() uint64 { return p.n }

// Size returns the number of ranks.
func (p *Plan) Size() int { return len(p.weights) }

// Total returns T, the number of cells in the triangular domain.
func (p *Plan) Total() uint64 { return p.offsets[len(p.weights)] }

// MaxProduct returns n², the largest product in the table.
func (p *Plan) MaxProduct() uint64 { return p.n * p.n }

// Weight returns the number of cells owned by rank.
func (p *Plan) Weight(rank int) (uint64, error) {
	if rank < 0 || rank >= len(p.weights) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrRankOutOfRange, rank, len(p.weights))
	}
	return p.weights[rank], nil
}

// Offset returns the zero-based canonical offset where rank's slice starts.
func (p *Plan) Offset(rank int) (uint64, error) {
	if rank < 0 || rank >= len(p.weights) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrRankOutOfRange, rank, len(p.weights))
	}
	return p.offsets[rank], nil
}

// Weights returns a copy of the weight vector.
func (p *Plan) Weights() []uint64 {
	out := make([]uint64, len(p.weights))
	copy(out, p.weights)
	return out
}
