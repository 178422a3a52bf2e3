package store

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
)

// probeInterval paces recovery attempts while degraded. At most one request
// per interval touches the primary; everything else is routed by policy.
const probeInterval = time.Minute

// Failover wraps a primary store (redis) with an in-process fallback and is
// the single place the fail-open/fail-closed policy lives. While the primary
// answers, it is used exclusively. When it returns ErrUnavailable the wrapper
// flips to degraded mode: fail-open serves from the fallback, fail-closed
// surfaces the error so callers deny the request.
//
// State is never migrated between backends. Counters restart and records
// written while degraded stay in the fallback; that is the accepted cost of
// staying up.
type Failover struct {
	primary  Store
	fallback Store
	failOpen bool
	log      *slog.Logger

	degraded atomic.Bool
	probe    *rate.Limiter
}

var (
	_ Store        = (*Failover)(nil)
	_ ModeReporter = (*Failover)(nil)
)

func NewFailover(primary, fallback Store, failOpen bool, log *slog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		failOpen: failOpen,
		log:      log,
		probe:    rate.NewLimiter(rate.Every(probeInterval), 1),
	}
}

// Degraded reports whether the wrapper is currently routing around the
// primary.
func (f *Failover) Degraded() bool { return f.degraded.Load() }

// Mode names the active backend for logs and status payloads.
func (f *Failover) Mode() string {
	if f.degraded.Load() {
		return "fallback"
	}
	return "primary"
}

// run executes fn against the right backend. It returns fellBack=true when
// the answer (or the error, under fail-closed) did not come from a healthy
// primary.
func (f *Failover) run(ctx context.Context, fn func(s Store) error) (fellBack bool, err error) {
	if !f.degraded.Load() || f.probe.Allow() {
		err = fn(f.primary)
		if err == nil || !errors.Is(err, ErrUnavailable) {
			if f.degraded.CompareAndSwap(true, false) {
				f.log.Info("primary store recovered")
			}
			return false, err
		}
		if ctx.Err() != nil {
			// The caller gave up, not the backend. Don't flip modes
			// on a client disconnect.
			return false, err
		}
		if f.degraded.CompareAndSwap(false, true) {
			f.log.Warn("primary store unavailable, entering degraded mode",
				slog.Bool("fail_open", f.failOpen),
				slog.String("error", err.Error()))
		}
		if !f.failOpen {
			return true, err
		}
	} else if !f.failOpen {
		return true, ErrUnavailable
	}
	return true, fn(f.fallback)
}

func (f *Failover) PutRecord(ctx context.Context, rec domain.TokenRecord, ttl time.Duration) error {
	_, err := f.run(ctx, func(s Store) error {
		return s.PutRecord(ctx, rec, ttl)
	})
	return err
}

func (f *Failover) GetRecord(ctx context.Context, jti string) (domain.TokenRecord, error) {
	var rec domain.TokenRecord
	_, err := f.run(ctx, func(s Store) error {
		var opErr error
		rec, opErr = s.GetRecord(ctx, jti)
		return opErr
	})
	return rec, err
}

func (f *Failover) CheckAndConsume(ctx context.Context, key string, limits domain.Limits, now time.Time) (domain.Decision, error) {
	var d domain.Decision
	fellBack, err := f.run(ctx, func(s Store) error {
		var opErr error
		d, opErr = s.CheckAndConsume(ctx, key, limits, now)
		return opErr
	})
	if err != nil {
		return domain.Decision{}, err
	}
	d.Degraded = fellBack
	return d, nil
}

func (f *Failover) PutSession(ctx context.Context, handle string, sess domain.Session, ttl time.Duration) error {
	_, err := f.run(ctx, func(s Store) error {
		return s.PutSession(ctx, handle, sess, ttl)
	})
	return err
}

func (f *Failover) ConsumeSession(ctx context.Context, handle string) (domain.Session, error) {
	var sess domain.Session
	_, err := f.run(ctx, func(s Store) error {
		var opErr error
		sess, opErr = s.ConsumeSession(ctx, handle)
		return opErr
	})
	return sess, err
}

func (f *Failover) Ping(ctx context.Context) error {
	_, err := f.run(ctx, func(s Store) error {
		return s.Ping(ctx)
	})
	return err
}

func (f *Failover) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}
