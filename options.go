package prodcount

import (
	"log/slog"
	"time"

	"github.com/TyllerAllen/CP431-FinalProject/internal/chunk"
)

// Codec names a chunk payload encoding.
type Codec string

const (
	// CodecRaw sends bitmap chunks uncompressed.
	CodecRaw Codec = "raw"
	// CodecLZ4 compresses chunks with LZ4.
	CodecLZ4 Codec = "lz4"
	// CodecZSTD compresses chunks with ZSTD.
	CodecZSTD Codec = "zstd"
	// CodecRoaring sends the set positions of each chunk as a roaring bitmap.
	CodecRoaring Codec = "roaring"
)

// DefaultChunkSize is the transport chunk size used unless WithChunkSize is given.
const DefaultChunkSize = chunk.DefaultSize

type options struct {
	chunkSize        int
	codec            Codec
	logger           *Logger
	metricsCollector MetricsCollector
	memoryLimit      int64
	ioLimit          int64
	timeout          time.Duration
	channelBuffer    int
}

// Option configures Run and RunRank.
type Option func(*options)

// WithChunkSize sets the maximum bitmap bytes carried by one transport message.
// Every rank of a run must use the same value.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithCodec selects the payload encoding of chunks. The receiver reads the
// codec from each frame, so ranks may differ.
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c == "" {
			c = CodecRaw
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := prodcount.NewJSONLogger(slog.LevelInfo)
//	res, _ := prodcount.Run(ctx, 1000, 4, prodcount.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryLimit caps the bytes of bitmaps and chunk buffers reserved by a
// run. A rank that cannot reserve its bitmap aborts the run with
// ErrMemoryLimitExceeded. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit paces the chunk sends of a run to at most bytesPerSec on the
// wire, shared by all ranks of Run. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithTimeout bounds the whole run. A stalled rank then fails the run
// instead of blocking it forever. 0 means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithChannelBuffer sets the number of in-flight chunks per rank pair in the
// in-process runtime used by Run. 0 makes every send wait for its receive.
func WithChannelBuffer(n int) Option {
	return func(o *options) {
		o.channelBuffer = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		chunkSize:        DefaultChunkSize,
		codec:            CodecRaw,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
