package prodcount

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
	"github.com/TyllerAllen/CP431-FinalProject/comm/local"
	"github.com/TyllerAllen/CP431-FinalProject/testutil"
)

func TestRun_SmallTables(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{1, 1},
		{2, 3},
		{3, 6},
		{4, 9},
		{10, 42},
		{100, 2906},
	}
	for _, tt := range tests {
		res, err := Run(t.Context(), tt.n, 3)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Distinct, "n=%d", tt.n)
		assert.Equal(t, tt.n, res.N)
		assert.Equal(t, 3, res.Workers)
		assert.True(t, res.Coordinator())
	}
}

func TestRun_IndependentOfWorkers(t *testing.T) {
	for n := uint64(1); n <= 14; n++ {
		want := testutil.DistinctProducts(n)
		for p := 1; p <= 9; p++ {
			res, err := Run(t.Context(), n, p, WithChunkSize(7))
			require.NoError(t, err)
			require.Equal(t, want, res.Distinct, "n=%d p=%d", n, p)
		}
	}
}

func TestRun_FourByFour(t *testing.T) {
	one, err := Run(t.Context(), 4, 1)
	require.NoError(t, err)
	three, err := Run(t.Context(), 4, 3)
	require.NoError(t, err)
	assert.Equal(t, one.Distinct, three.Distinct)
}

func TestRun_MoreWorkersThanCells(t *testing.T) {
	res, err := Run(t.Context(), 2, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Distinct)
}

func TestRun_CodecsAndChunkSizes(t *testing.T) {
	const n = 60
	want := testutil.DistinctProducts(n)

	for _, codec := range []Codec{CodecRaw, CodecLZ4, CodecZSTD, CodecRoaring} {
		for _, size := range []int{1, 13, 600, 3601, DefaultChunkSize} {
			res, err := Run(t.Context(), n, 4,
				WithCodec(codec),
				WithChunkSize(size),
				WithChannelBuffer(8),
			)
			require.NoError(t, err, "codec=%s size=%d", codec, size)
			assert.Equal(t, want, res.Distinct, "codec=%s size=%d", codec, size)
		}
	}
}

func TestRun_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	res, err := Run(t.Context(), 20, 4, WithMetricsCollector(mc), WithChunkSize(100))
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(4), stats.ComputeCount)
	assert.Equal(t, int64(210), stats.ComputeCells)
	assert.Equal(t, int64(3), stats.SendCount)
	assert.Equal(t, int64(3), stats.DrainCount)
	assert.Equal(t, int64(3*5), stats.ChunksSent) // 401 bytes / 100
	assert.Equal(t, stats.ChunksSent, stats.ChunksMerged)
	assert.Equal(t, int64(3*401), stats.RawBytesSent)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Zero(t, stats.RunErrors)
	assert.Equal(t, res.Distinct, stats.LastDistinct)
	assert.Positive(t, res.PeakMemory)
}

func TestRun_MemoryLimit(t *testing.T) {
	mc := &BasicMetricsCollector{}
	// Two bitmaps of 10001 bytes do not fit.
	res, err := Run(t.Context(), 100, 2, WithMemoryLimit(15000), WithMetricsCollector(mc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Zero(t, res.Distinct)
	assert.Equal(t, int64(1), mc.GetStats().RunErrors)
}

func TestRun_InvalidArguments(t *testing.T) {
	_, err := Run(t.Context(), 0, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Run(t.Context(), 5, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Run(t.Context(), 5, 2, WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Run(t.Context(), 5, 2, WithCodec("gzip"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRun_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(t.Context(), 5, 2, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"run completed"`)
	assert.Contains(t, out, `"distinct":14`)
	assert.Contains(t, out, `"msg":"bitmap sent"`)
	assert.Contains(t, out, `"msg":"rank merged"`)
}

func TestRunRank_ProtocolViolation(t *testing.T) {
	w, err := local.NewWorld(2, func(o *local.Options) { o.ChannelBuffer = 1 })
	require.NoError(t, err)
	defer w.Close()
	c0, _ := w.Comm(0)
	c1, _ := w.Comm(1)

	g, ctx := errgroup.WithContext(t.Context())
	g.Go(func() error {
		if err := c1.Barrier(ctx); err != nil {
			return err
		}
		return c1.Send(ctx, comm.Coordinator, comm.TagLast, []byte("not a frame"))
	})

	res, err := RunRank(t.Context(), c0, 3)
	require.NoError(t, g.Wait())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Zero(t, res.Distinct)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Rank)
	assert.Equal(t, 0, pe.Seq)
}

func TestRunRank_TimeoutOnStalledPeer(t *testing.T) {
	w, err := local.NewWorld(2)
	require.NoError(t, err)
	defer w.Close()
	c0, _ := w.Comm(0)

	_, err = RunRank(t.Context(), c0, 3, WithTimeout(50*time.Millisecond))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunRank_SeparateCalls(t *testing.T) {
	const n, p = 31, 5
	w, err := local.NewWorld(p)
	require.NoError(t, err)
	defer w.Close()

	results := make([]Result, p)
	g, ctx := errgroup.WithContext(t.Context())
	for r := 0; r < p; r++ {
		c, err := w.Comm(r)
		require.NoError(t, err)
		g.Go(func() error {
			res, err := RunRank(ctx, c, n, WithCodec(CodecLZ4), WithChunkSize(128))
			results[c.Rank()] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, testutil.DistinctProducts(n), results[0].Distinct)
	for r := 1; r < p; r++ {
		assert.Zero(t, results[r].Distinct)
		assert.Equal(t, r, results[r].Rank)
		assert.False(t, results[r].Coordinator())
	}
}
