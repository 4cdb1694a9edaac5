package blockkit

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyLogger
)

// WithFailFast returns a child context that makes Validate stop at the first
// error of each document.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current validation should stop on the first error.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WithLogger attaches a logger used by the fixer engine to report applied fixers.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, _ctxKeyLogger, logger)
}

var discardLogger = slog.New(slog.DiscardHandler)

// LoggerFrom returns the logger attached to ctx, or a logger that discards everything.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(_ctxKeyLogger).(*slog.Logger); ok && l != nil {
		return l
	}
	return discardLogger
}
