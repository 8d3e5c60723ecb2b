package fastcsr

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tamirms/fastcsr/csr"
)

// Logger wraps slog.Logger with accumulator-specific helpers.
// Field names are consistent across the helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger returns a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// LogAppend logs one appended chunk at debug level, or the failure.
func (l *Logger) LogAppend(ctx context.Context, chunk, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"chunk", chunk,
			"entries", entries,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "chunk appended",
		"chunk", chunk,
		"entries", entries,
	)
}

// LogFinalize logs the outcome of Finalize.
func (l *Logger) LogFinalize(ctx context.Context, st Stats, indexWidth csr.Width, partitions int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "finalize failed",
			"chunks", st.Chunks,
			"nnz", st.NNZ,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "finalize completed",
		"rows", st.Rows,
		"cols", st.Cols,
		"chunks", st.Chunks,
		"nnz", st.NNZ,
		"index_width", indexWidth.String(),
		"partitions", partitions,
		"spilled_bytes", st.SpillBytes,
		"elapsed", elapsed,
	)
}

// LogRead logs the outcome of ReadCSR.
func (l *Logger) LogRead(ctx context.Context, batches int, nnz int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"batches", batches,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "read completed",
		"batches", batches,
		"nnz", nnz,
		"elapsed", elapsed,
	)
}
