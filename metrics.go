package prodcount

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
// Methods are called concurrently from every rank.
type MetricsCollector interface {
	// RecordCompute is called after a rank has marked its slice.
	RecordCompute(rank int, cells uint64, duration time.Duration)

	// RecordSend is called after a rank has streamed its bitmap.
	// rawBytes is the bitmap length, wireBytes what went on the wire.
	RecordSend(rank, chunks int, rawBytes, wireBytes int64, err error)

	// RecordDrain is called on the coordinator after one source rank is merged.
	RecordDrain(src, chunks int, wireBytes int64)

	// RecordRun is called on the coordinator when a run ends.
	RecordRun(distinct uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(int, uint64, time.Duration) {}
func (NoopMetricsCollector) RecordSend(int, int, int64, int64, error) {}
func (NoopMetricsCollector) RecordDrain(int, int, int64)              {}
func (NoopMetricsCollector) RecordRun(uint64, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ComputeCount      atomic.Int64
	ComputeCells      atomic.Int64
	ComputeTotalNanos atomic.Int64
	SendCount         atomic.Int64
	SendErrors        atomic.Int64
	ChunksSent        atomic.Int64
	RawBytesSent      atomic.Int64
	WireBytesSent     atomic.Int64
	DrainCount        atomic.Int64
	ChunksMerged      atomic.Int64
	WireBytesMerged   atomic.Int64
	RunCount          atomic.Int64
	RunErrors         atomic.Int64
	LastDistinct      atomic.Uint64
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(rank int, cells uint64, duration time.Duration) {
	b.ComputeCount.Add(1)
	b.ComputeCells.Add(int64(cells))
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
}

// RecordSend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSend(rank, chunks int, rawBytes, wireBytes int64, err error) {
	b.SendCount.Add(1)
	b.ChunksSent.Add(int64(chunks))
	b.RawBytesSent.Add(rawBytes)
	b.WireBytesSent.Add(wireBytes)
	if err != nil {
		b.SendErrors.Add(1)
	}
}

// RecordDrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDrain(src, chunks int, wireBytes int64) {
	b.DrainCount.Add(1)
	b.ChunksMerged.Add(int64(chunks))
	b.WireBytesMerged.Add(wireBytes)
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(distinct uint64, duration time.Duration, err error) {
	b.RunCount.Add(1)
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.LastDistinct.Store(distinct)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ComputeCount:    b.ComputeCount.Load(),
		ComputeCells:    b.ComputeCells.Load(),
		ComputeAvgNanos: b.getAvgComputeNanos(),
		SendCount:       b.SendCount.Load(),
		SendErrors:      b.SendErrors.Load(),
		ChunksSent:      b.ChunksSent.Load(),
		RawBytesSent:    b.RawBytesSent.Load(),
		WireBytesSent:   b.WireBytesSent.Load(),
		DrainCount:      b.DrainCount.Load(),
		ChunksMerged:    b.ChunksMerged.Load(),
		WireBytesMerged: b.WireBytesMerged.Load(),
		RunCount:        b.RunCount.Load(),
		RunErrors:       b.RunErrors.Load(),
		LastDistinct:    b.LastDistinct.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgComputeNanos() int64 {
	count := b.ComputeCount.Load()
	if count == 0 {
		return 0
	}
	return b.ComputeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ComputeCount    int64
	ComputeCells    int64
	ComputeAvgNanos int64
	SendCount       int64
	SendErrors      int64
	ChunksSent      int64
	RawBytesSent    int64
	WireBytesSent   int64
	DrainCount      int64
	ChunksMerged    int64
	WireBytesMerged int64
	RunCount        int64
	RunErrors       int64
	LastDistinct    uint64
}
