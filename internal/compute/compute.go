// Package compute marks the products of one rank's slice of the triangular domain.
package compute

import (
	"github.com/TyllerAllen/CP431-FinalProject/internal/presence"
	"github.com/TyllerAllen/CP431-FinalProject/internal/triangle"
)

// Stats summarizes one Mark call.
type Stats struct {
	Cells   uint64 // cells visited
	Clamped uint64 // products above n², clamped to n²
}

// Mark walks steps cells from start and marks each product i·j in bm.
// It returns the cursor after the last step, which equals the next rank's start.
func Mark(bm *presence.Bitmap, n uint64, start triangle.Cursor, steps uint64) (triangle.Cursor, Stats) {
	maxProduct := n * n
	e := triangle.At(n, start)

	var st Stats
	for ; st.Cells < steps; st.Cells++ {
		p := e.Cursor().Product()
		if p > maxProduct {
			p = maxProduct
			st.Clamped++
		}
		bm.Mark(p)
		e.Advance()
	}
	return e.Cursor(), st
}
