// Package aggregate merges every rank's presence bitmap on the coordinator.
package aggregate

import (
	"context"
	"fmt"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
	"github.com/TyllerAllen/CP431-FinalProject/internal/chunk"
	"github.com/TyllerAllen/CP431-FinalProject/internal/presence"
	"github.com/TyllerAllen/CP431-FinalProject/internal/resource"
)

// RankStats is the transport summary of one drained rank.
type RankStats struct {
	Rank int
	chunk.Stats
}

// Aggregator drains non-coordinator ranks into the coordinator's bitmap.
type Aggregator struct {
	c    comm.Communicator
	plan chunk.Plan
	rc   *resource.Controller

	// OnRank, if set, is called after each rank has been merged.
	OnRank func(RankStats)
}

// New returns an aggregator for bitmaps of length bytes cut into chunks of size.
func New(c comm.Communicator, length, size int, rc *resource.Controller) (*Aggregator, error) {
	plan, err := chunk.NewPlan(length, size)
	if err != nil {
		return nil, err
	}
	return &Aggregator{c: c, plan: plan, rc: rc}, nil
}

// Merge receives ranks 1..P-1 in ascending order and ORs each into acc.
// It stops at the first error; acc must then be discarded.
func (a *Aggregator) Merge(ctx context.Context, acc *presence.Bitmap) error {
	if acc.Len() != a.plan.Len() {
		return fmt.Errorf("aggregate: accumulator of %d bytes, plan of %d", acc.Len(), a.plan.Len())
	}

	r, err := chunk.NewReceiver(a.c, a.plan, a.rc)
	if err != nil {
		return err
	}
	defer r.Close()

	for src := 0; src < a.c.Size(); src++ {
		if src == a.c.Rank() {
			continue
		}
		st, err := r.Drain(ctx, src, acc)
		if err != nil {
			return err
		}
		if a.OnRank != nil {
			a.OnRank(RankStats{Rank: src, Stats: st})
		}
	}
	return nil
}

// Count returns the number of distinct products recorded in acc.
func Count(acc *presence.Bitmap) uint64 {
	return acc.Count()
}
