package logutil

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

// WithLogger binds a request- or command-scoped logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetOrDefault returns the context logger, falling back to the global
// one when the context carries none.
func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// Audit returns the context logger tagged as an audit trail entry.
// Authentication outcomes go through here so they can be filtered out
// of the regular application log stream.
func Audit(ctx context.Context) zerolog.Logger {
	return GetOrDefault(ctx).With().Str("log", "audit").Logger()
}
