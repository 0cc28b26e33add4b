package prodcount

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/TyllerAllen/CP431-FinalProject/internal/chunk"
)

// Logger wraps slog.Logger with prodcount-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRank adds a rank field to the logger.
func (l *Logger) WithRank(rank int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rank", rank),
	}
}

// LogCompute logs the local marking step of a rank.
func (l *Logger) LogCompute(ctx context.Context, cells, clamped uint64, d time.Duration) {
	if clamped > 0 {
		l.WarnContext(ctx, "products clamped to n²",
			"cells", cells,
			"clamped", clamped,
		)
	}
	l.DebugContext(ctx, "local computation completed",
		"cells", cells,
		"duration", d,
	)
}

// LogSend logs the transmission of a rank's bitmap.
func (l *Logger) LogSend(ctx context.Context, st chunk.Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "send failed",
			"chunks", st.Chunks,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "bitmap sent",
			"chunks", st.Chunks,
			"raw_bytes", st.RawBytes,
			"wire_bytes", st.WireBytes,
		)
	}
}

// LogDrain logs the merge of one source rank on the coordinator.
func (l *Logger) LogDrain(ctx context.Context, src int, st chunk.Stats) {
	l.DebugContext(ctx, "rank merged",
		"source", src,
		"chunks", st.Chunks,
		"wire_bytes", st.WireBytes,
	)
}

// LogResult logs the outcome of a run on the coordinator.
func (l *Logger) LogResult(ctx context.Context, res Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"n", res.N,
			"workers", res.Workers,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"n", res.N,
			"workers", res.Workers,
			"distinct", res.Distinct,
			"elapsed", res.Elapsed,
		)
	}
}
