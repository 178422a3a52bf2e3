package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

type cidKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithCorrelationID stores the correlation id alongside a logger annotated
// with it, so audit records and log lines for one request share the id.
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	l := FromContext(ctx).With("correlation_id", cid)
	ctx = context.WithValue(ctx, cidKey{}, cid)
	return WithContext(ctx, l)
}

// CorrelationID returns the correlation id attached to the context, or "".
func CorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(cidKey{}).(string)
	return cid
}
