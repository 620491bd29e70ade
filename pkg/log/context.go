package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx retrieves the logger from the context.
// If no logger is found, the global logger is returned.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// ConnContext returns a context carrying a child logger scoped to one
// realtime connection.
func ConnContext(parent context.Context, connID, remoteAddr string) context.Context {
	base := Ctx(parent)
	child := base.With().
		Str(FieldConnID, connID).
		Str(FieldClientIP, remoteAddr).
		Logger()
	return WithLogger(parent, child)
}
