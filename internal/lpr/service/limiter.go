package service

import (
	"context"
	"errors"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

// Limiter meters requests against per-identity budgets. The counters live
// in the store so every instance sees the same windows; the service layer
// only picks the key and translates backend trouble.
type Limiter struct {
	Store store.Store

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

// CheckAndConsume spends one request from the identity's budget for the
// endpoint. A denied call consumes nothing; the Decision carries the
// remaining budgets and the retry hint either way.
func (s *Limiter) CheckAndConsume(ctx context.Context, identity, endpoint string, limits domain.Limits) (domain.Decision, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	key := domain.RateKey(identity, endpoint)
	d, err := s.Store.CheckAndConsume(ctx, key, limits, now)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return domain.Decision{}, domain.NewAuthError(domain.KindBackendUnavailable, "rate limiter unavailable")
		}
		return domain.Decision{}, err
	}

	if !d.Allowed {
		slogx.FromContext(ctx).Warn("rate limit exceeded",
			"identity", identity,
			"endpoint", endpoint,
			"retry_after", d.RetryAfter)
	}
	return d, nil
}

// Deny converts a denial decision into the classified error the HTTP
// layer renders, carrying the retry hint along.
func Deny(d domain.Decision) *domain.AuthError {
	err := domain.NewAuthError(domain.KindRateLimited, "rate limit exceeded")
	err.RetryAfter = d.RetryAfter
	return err
}
