package httpx

import (
	"context"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

type ctxKey string

const ctxKeyClaims ctxKey = "lpr_claims"

// WithClaims attaches verified token claims to the context for downstream
// handlers.
func WithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// ClaimsFromContext returns the verified claims stored by the enforcement
// middleware, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}
