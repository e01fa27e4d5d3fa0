package bitmapstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with the store's field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger for handler. A nil handler logs text at info
// level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger writing JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger writing text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// WithStore tags every record with the store's catalog name.
func (l *Logger) WithStore(catalog string) *Logger {
	return &Logger{Logger: l.Logger.With("catalog", catalog)}
}

// WithName tags every record with a bitmap name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{Logger: l.Logger.With("name", name)}
}

// LogPut logs a Put.
func (l *Logger) LogPut(ctx context.Context, name string, e Entry, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed", "name", name, "error", err)
		return
	}
	l.DebugContext(ctx, "put completed",
		"name", name,
		"cardinality", e.Cardinality,
		"size_in_bytes", e.SizeInBytes,
		"stored_bytes", e.StoredBytes,
		"compression", e.Compression,
		"elapsed", elapsed,
	)
}

// LogGet logs a Get or View.
func (l *Logger) LogGet(ctx context.Context, name string, storedBytes int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "get failed", "name", name, "error", err)
		return
	}
	l.DebugContext(ctx, "get completed", "name", name, "stored_bytes", storedBytes, "elapsed", elapsed)
}

// LogDelete logs a Delete.
func (l *Logger) LogDelete(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed", "name", name, "error", err)
		return
	}
	l.DebugContext(ctx, "delete completed", "name", name)
}

// LogLoadMany logs a LoadMany batch.
func (l *Logger) LogLoadMany(ctx context.Context, count int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load many failed", "count", count, "error", err)
		return
	}
	l.DebugContext(ctx, "load many completed", "count", count, "elapsed", elapsed)
}

// LogSync logs a catalog write.
func (l *Logger) LogSync(ctx context.Context, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog sync failed", "entries", entries, "error", err)
		return
	}
	l.InfoContext(ctx, "catalog synced", "entries", entries)
}
