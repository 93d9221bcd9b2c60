package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the request scoped logger, or the global logger if none is attached.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}

	return l
}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
