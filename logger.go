package vecrank

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vecrank-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithShape adds embedding_size and document_count fields to the logger.
func (l *Logger) WithShape(embeddingSize, documentCount int) *Logger {
	return &Logger{
		Logger: l.Logger.With("embedding_size", embeddingSize, "document_count", documentCount),
	}
}

// LogCreate logs a store creation.
func (l *Logger) LogCreate(ctx context.Context, footprintBytes int64, workers int, isa string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create failed",
			"duration", duration,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "store created",
		"footprint_bytes", footprintBytes,
		"workers", workers,
		"isa", isa,
		"duration", duration,
	)
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, requested, returned int, duration time.Duration) {
	l.DebugContext(ctx, "query completed",
		"requested", requested,
		"results", returned,
		"duration", duration,
	)
}

// LogClose logs the release of a store.
func (l *Logger) LogClose(ctx context.Context, footprintBytes int64) {
	l.DebugContext(ctx, "store closed",
		"footprint_bytes", footprintBytes,
	)
}
