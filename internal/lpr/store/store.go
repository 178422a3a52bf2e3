package store

import (
	"context"
	"errors"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable means the backend could not be reached at all. The
	// failover wrapper reacts to this error; drivers must wrap transport
	// failures in it so callers can distinguish "no such key" from "Redis
	// is down".
	ErrUnavailable = errors.New("store: backend unavailable")
)

// Store is the root data access interface. Concrete drivers (redis, memory)
// implement this. Unlike a SQL store there are no sub-repositories here:
// everything is keyed, TTL-bound state, so a flat interface keeps drivers
// small and the failover wrapper trivial.
type Store interface {
	// PutRecord writes the delegation record for rec.JTI. A ttl > 0 sets
	// the eviction deadline; ttl <= 0 keeps whatever deadline the key
	// already has (used when flipping an existing record to revoked).
	PutRecord(ctx context.Context, rec domain.TokenRecord, ttl time.Duration) error

	// GetRecord returns the record for jti, or ErrNotFound.
	GetRecord(ctx context.Context, jti string) (domain.TokenRecord, error)

	// CheckAndConsume performs one atomic rate-limit step for key: check
	// the minute window, hour window and burst bucket against limits, and
	// consume from all three only if every check passes. A denied call
	// consumes nothing.
	CheckAndConsume(ctx context.Context, key string, limits domain.Limits, now time.Time) (domain.Decision, error)

	// PutSession stores a pending delegation session under its handle.
	PutSession(ctx context.Context, handle string, sess domain.Session, ttl time.Duration) error

	// ConsumeSession returns and deletes the session for handle in one
	// step, or ErrNotFound. A handle can never be redeemed twice.
	ConsumeSession(ctx context.Context, handle string) (domain.Session, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources (no-op for memory).
	Close() error
}

// ModeReporter is implemented by stores that can degrade, i.e. the failover
// wrapper. Handlers use it to surface degraded mode in response headers.
type ModeReporter interface {
	Degraded() bool
}
