// Package triangle enumerates the triangular domain {(i, j): 1 ≤ j ≤ i ≤ n}.
//
// The canonical order is column-major: for j = 1..n, for i = j..n, emit (i, j).
// Every rank slices the domain by offsets into this order, so Position and
// Offset are exact inverses over [0, T] where T = n(n+1)/2. Offset T maps to
// the one-past-the-end sentinel (n+1, n+1), which is never dereferenced.
package triangle

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfDomain is returned for offsets beyond T or cursors outside the domain.
var ErrOutOfDomain = errors.New("triangle: position out of domain")

// Cursor is a position (I, J) in the canonical order.
type Cursor struct {
	I uint64
	J uint64
}

func (c Cursor) String() string {
	return fmt.Sprintf("(%d,%d)", c.I, c.J)
}

// Product returns I·J.
func (c Cursor) Product() uint64 {
	return c.I * c.J
}

// Enumerator walks the canonical order one cell at a time.
type Enumerator struct {
	n   uint64
	cur Cursor
}

// New returns an enumerator over an n×n table positioned at (1, 1).
func New(n uint64) *Enumerator {
	return &Enumerator{n: n, cur: Cursor{I: 1, J: 1}}
}

// At returns an enumerator over an n×n table positioned at c.
func At(n uint64, c Cursor) *Enumerator {
	return &Enumerator{n: n, cur: c}
}

// Cursor returns the current position.
func (e *Enumerator) Cursor() Cursor {
	return e.cur
}

// Done reports whether the enumerator stands on the sentinel.
func (e *Enumerator) Done() bool {
	return e.cur.J > e.n
}

// Advance moves one step: down the column, or to the diagonal of the next one.
func (e *Enumerator) Advance() {
	if e.cur.I == e.n {
		e.cur.J++
		e.cur.I = e.cur.J
		return
	}
	e.cur.I++
}

// Seek positions the enumerator on the offset-th cell (0-based).
func (e *Enumerator) Seek(offset uint64) error {
	c, err := Position(e.n, offset)
	if err != nil {
		return err
	}
	e.cur = c
	return nil
}

// Triangular returns m(m+1)/2, the number of cells of an m×m domain.
func Triangular(m uint64) uint64 {
	if m%2 == 0 {
		return (m / 2) * (m + 1)
	}
	return m * ((m + 1) / 2)
}

// columnStart returns the offset of (j, j), the first cell of column j.
func columnStart(n, j uint64) uint64 {
	return Triangular(n) - Triangular(n-j+1)
}

// Position maps an offset in [0, T] to its cursor in O(1).
func Position(n, offset uint64) (Cursor, error) {
	total := Triangular(n)
	if offset > total {
		return Cursor{}, fmt.Errorf("%w: offset %d > %d", ErrOutOfDomain, offset, total)
	}
	if offset == total {
		return Cursor{I: n + 1, J: n + 1}, nil
	}

	// Cells from offset to the end: q = T - offset. The column holding offset
	// has length m, the smallest m with m(m+1)/2 >= q.
	q := total - offset
	m := uint64(math.Sqrt(float64(2 * q)))
	for Triangular(m) < q {
		m++
	}
	for m > 1 && Triangular(m-1) >= q {
		m--
	}

	j := n - m + 1
	i := j + (offset - columnStart(n, j))
	return Cursor{I: i, J: j}, nil
}

// Offset maps a cursor back to its offset. The sentinel maps to T.
func Offset(n uint64, c Cursor) (uint64, error) {
	if c.I == n+1 && c.J == n+1 {
		return Triangular(n), nil
	}
	if c.J < 1 || c.J > c.I || c.I > n {
		return 0, fmt.Errorf("%w: %s for n=%d", ErrOutOfDomain, c, n)
	}
	return columnStart(n, c.J) + (c.I - c.J), nil
}
