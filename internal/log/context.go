// Package log carries a zap logger through context.Context so that
// providers, the transport and CLI commands share one configured logger.
package log

import (
	"context"

	"go.uber.org/zap"
)

type logCtx struct {
	context.Context

	logger  *zap.Logger
	sLogger *zap.SugaredLogger
}

type logType struct{}

func (c *logCtx) Value(k any) any {
	if _, ok := k.(logType); ok {
		return c.logger
	}

	return c.Context.Value(k)
}

// WithLogger returns a copy of parent carrying logger.
func WithLogger(parent context.Context, logger *zap.Logger) context.Context {
	return &logCtx{Context: parent, logger: logger, sLogger: logger.Sugar()}
}

// L returns the logger in ctx, or the global zap logger (a no-op unless
// replaced) when none is present.
func L(ctx context.Context) *zap.Logger {
	if l, ok := ctx.(*logCtx); ok {
		return l.logger
	}

	if l, _ := ctx.Value(logType{}).(*zap.Logger); l != nil {
		return l
	}

	return zap.L()
}

// S returns sugared version of L.
func S(ctx context.Context) *zap.SugaredLogger {
	if s, ok := ctx.(*logCtx); ok {
		return s.sLogger
	}

	if s, _ := ctx.Value(logType{}).(*zap.Logger); s != nil {
		return s.Sugar()
	}

	return zap.S()
}

// With returns a context whose logger carries the extra fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	l := &logCtx{
		Context: ctx,
		logger:  L(ctx).With(fields...),
	}
	l.sLogger = l.logger.Sugar()
	return l
}

// SWith is the loosely typed version of With.
func SWith(ctx context.Context, kv ...any) context.Context {
	l := &logCtx{
		Context: ctx,
		sLogger: S(ctx).With(kv...),
	}
	l.logger = l.sLogger.Desugar()
	return l
}
