package prodcount

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
	"github.com/TyllerAllen/CP431-FinalProject/comm/local"
	"github.com/TyllerAllen/CP431-FinalProject/internal/aggregate"
	"github.com/TyllerAllen/CP431-FinalProject/internal/chunk"
	"github.com/TyllerAllen/CP431-FinalProject/internal/compute"
	"github.com/TyllerAllen/CP431-FinalProject/internal/partition"
	"github.com/TyllerAllen/CP431-FinalProject/internal/presence"
	"github.com/TyllerAllen/CP431-FinalProject/internal/resource"
	"github.com/TyllerAllen/CP431-FinalProject/internal/triangle"
)

// MaxN is the largest supported table dimension; n² must be addressable.
const MaxN = partition.MaxN

// Result is the outcome of a run as seen by one rank.
// Distinct and Elapsed are only set on the coordinator.
type Result struct {
	N        uint64
	Workers  int
	Rank     int
	Distinct uint64
	Elapsed  time.Duration

	// PeakMemory is the highest number of bitmap and buffer bytes reserved
	// at once. Run reports it for the whole world.
	PeakMemory int64
}

// Coordinator reports whether the result comes from the merging rank.
func (r Result) Coordinator() bool {
	return r.Rank == comm.Coordinator
}

// Run counts the distinct products of the n×n table with workers ranks
// running as goroutines of this process. The first rank to fail cancels the
// others and its error is returned.
func Run(ctx context.Context, n uint64, workers int, optFns ...Option) (Result, error) {
	o := applyOptions(optFns)
	res := Result{N: n, Workers: workers}

	if workers < 1 {
		err := fmt.Errorf("%w: %d workers", ErrInvalidArgument, workers)
		o.logger.LogResult(ctx, res, err)
		return res, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	w, err := local.NewWorld(workers, func(lo *local.Options) {
		lo.ChannelBuffer = o.channelBuffer
	})
	if err != nil {
		return res, translateError(err)
	}
	defer w.Close()

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < workers; rank++ {
		c, err := w.Comm(rank)
		if err != nil {
			return res, err
		}
		g.Go(func() error {
			out, err := runRank(gctx, c, n, o, rc)
			if err != nil {
				return err
			}
			if out.Coordinator() {
				res = out
			}
			return nil
		})
	}

	err = g.Wait()
	res.PeakMemory = rc.PeakMemoryUsage()
	if err != nil {
		res.Distinct = 0
	}
	o.metricsCollector.RecordRun(res.Distinct, time.Since(start), err)
	o.logger.LogResult(ctx, res, err)
	return res, err
}

// RunRank executes the rank program of c against any Communicator. Every rank
// of the world must call it with the same n and chunk size. Only the
// coordinator's Result carries the count.
func RunRank(ctx context.Context, c comm.Communicator, n uint64, optFns ...Option) (Result, error) {
	o := applyOptions(optFns)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})
	res, err := runRank(ctx, c, n, o, rc)
	res.PeakMemory = rc.PeakMemoryUsage()
	return res, err
}

func runRank(ctx context.Context, c comm.Communicator, n uint64, o options, rc *resource.Controller) (Result, error) {
	rank := c.Rank()
	log := o.logger.WithRank(rank)
	res := Result{N: n, Workers: c.Size(), Rank: rank}
	start := time.Now()

	codec, err := chunk.ParseCodec(string(o.codec))
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if _, err := chunk.NewPlan(0, o.chunkSize); err != nil {
		return res, translateError(err)
	}

	plan, err := partition.New(n, c.Size())
	if err != nil {
		return res, translateError(err)
	}
	weight, err := plan.Weight(rank)
	if err != nil {
		return res, translateError(err)
	}
	offset, _ := plan.Offset(rank)

	if err := c.Barrier(ctx); err != nil {
		return res, fmt.Errorf("rank %d barrier: %w", rank, err)
	}

	cur, err := triangle.Position(n, offset)
	if err != nil {
		return res, translateError(err)
	}

	bm, err := presence.New(rc, plan.MaxProduct())
	if err != nil {
		return res, translateError(fmt.Errorf("rank %d: %w", rank, err))
	}
	defer bm.Close()

	t0 := time.Now()
	end, st := compute.Mark(bm, n, cur, weight)
	o.metricsCollector.RecordCompute(rank, st.Cells, time.Since(t0))
	log.LogCompute(ctx, st.Cells, st.Clamped, time.Since(t0))

	if got, err := triangle.Offset(n, end); err != nil || got != offset+weight {
		return res, fmt.Errorf("%w: rank %d stopped at %s", ErrEnumerationDrift, rank, end)
	}

	if rank != comm.Coordinator {
		return res, send(ctx, c, bm, o, codec, rc, log)
	}

	agg, err := aggregate.New(c, bm.Len(), o.chunkSize, rc)
	if err != nil {
		return res, translateError(err)
	}
	agg.OnRank = func(rs aggregate.RankStats) {
		o.metricsCollector.RecordDrain(rs.Rank, rs.Chunks, rs.WireBytes)
		log.LogDrain(ctx, rs.Rank, rs.Stats)
	}
	if err := agg.Merge(ctx, bm); err != nil {
		return res, translateError(err)
	}

	res.Distinct = aggregate.Count(bm)
	res.Elapsed = time.Since(start)
	return res, nil
}

func send(ctx context.Context, c comm.Communicator, bm *presence.Bitmap, o options, codec chunk.Codec, rc *resource.Controller, log *Logger) error {
	s, err := chunk.NewSender(c, comm.Coordinator, o.chunkSize, codec, rc)
	if err != nil {
		return translateError(err)
	}
	defer s.Close()

	st, err := s.Send(ctx, bm.Bytes())
	o.metricsCollector.RecordSend(c.Rank(), st.Chunks, st.RawBytes, st.WireBytes, err)
	log.LogSend(ctx, st, err)
	return translateError(err)
}
