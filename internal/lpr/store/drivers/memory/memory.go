// Package memory is the in-process store driver. It backs single-node
// deployments and serves as the failover target when Redis is down, so its
// rate-limit semantics must match the redis driver exactly: fixed minute and
// hour windows keyed by epoch, a token bucket refilled one token per second,
// and deny-before-consume on every check.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
)

type recordEntry struct {
	rec      domain.TokenRecord
	deadline time.Time
}

type sessionEntry struct {
	sess     domain.Session
	deadline time.Time
}

// rateEntry holds the three budgets for one identity+endpoint key. Window
// counters are tagged with their epoch bucket so rollover is just a key
// comparison, no timers involved.
type rateEntry struct {
	mu          sync.Mutex
	minuteKey   int64
	minuteCount int
	hourKey     int64
	hourCount   int
	tokens      int
	lastRefill  int64
	touched     int64
}

type Store struct {
	mu       sync.RWMutex
	records  map[string]recordEntry
	sessions map[string]sessionEntry

	rates sync.Map // string -> *rateEntry
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		records:  make(map[string]recordEntry),
		sessions: make(map[string]sessionEntry),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// PutRecord stores rec under its jti. A ttl <= 0 keeps the existing
// eviction deadline, which is how revocation flips a record without
// extending its lifetime.
func (s *Store) PutRecord(ctx context.Context, rec domain.TokenRecord, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := recordEntry{rec: rec}
	switch {
	case ttl > 0:
		entry.deadline = time.Now().Add(ttl)
	default:
		prev, ok := s.records[rec.JTI]
		if ok {
			entry.deadline = prev.deadline
		} else {
			entry.deadline = time.Now().Add(domain.MinRecordTTL)
		}
	}
	s.records[rec.JTI] = entry
	return nil
}

func (s *Store) GetRecord(ctx context.Context, jti string) (domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.TokenRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.records[jti]
	if !ok || expired(entry.deadline) {
		return domain.TokenRecord{}, store.ErrNotFound
	}
	return entry.rec, nil
}

func (s *Store) PutSession(ctx context.Context, handle string, sess domain.Session, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := sessionEntry{sess: sess}
	if ttl > 0 {
		entry.deadline = time.Now().Add(ttl)
	}
	s.sessions[handle] = entry
	return nil
}

// ConsumeSession is the memory equivalent of Redis GETDEL: the session is
// removed before it is returned, so a handle redeems at most once.
func (s *Store) ConsumeSession(ctx context.Context, handle string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[handle]
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}
	delete(s.sessions, handle)
	if expired(entry.deadline) {
		return domain.Session{}, store.ErrNotFound
	}
	return entry.sess, nil
}

// CheckAndConsume runs the whole rate step under the entry's own lock, so
// concurrent requests for the same key serialize and the count can never
// exceed the limit.
func (s *Store) CheckAndConsume(ctx context.Context, key string, limits domain.Limits, now time.Time) (domain.Decision, error) {
	if err := ctx.Err(); err != nil {
		return domain.Decision{}, err
	}

	v, _ := s.rates.LoadOrStore(key, &rateEntry{})
	e := v.(*rateEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	unix := now.Unix()
	minuteKey := unix / 60
	hourKey := unix / 3600

	if e.minuteKey != minuteKey {
		e.minuteKey = minuteKey
		e.minuteCount = 0
	}
	if e.hourKey != hourKey {
		e.hourKey = hourKey
		e.hourCount = 0
	}

	// Refill the burst bucket by whole elapsed seconds. A fresh entry
	// starts with a full bucket.
	if e.touched == 0 {
		e.tokens = limits.Burst
		e.lastRefill = unix
	} else if elapsed := unix - e.lastRefill; elapsed > 0 {
		e.tokens += int(elapsed)
		if e.tokens > limits.Burst {
			e.tokens = limits.Burst
		}
		e.lastRefill = unix
	}
	e.touched = unix

	d := domain.Decision{
		RemainingMinute: remaining(limits.PerMinute, e.minuteCount),
		RemainingHour:   remaining(limits.PerHour, e.hourCount),
		RemainingBurst:  max(e.tokens, 0),
	}

	switch {
	case e.minuteCount >= limits.PerMinute:
		d.RetryAfter = int(60 - unix%60)
	case e.hourCount >= limits.PerHour:
		d.RetryAfter = int(3600 - unix%3600)
	case e.tokens <= 0:
		d.RetryAfter = 1
	default:
		e.minuteCount++
		e.hourCount++
		e.tokens--
		d.Allowed = true
		d.RemainingMinute = remaining(limits.PerMinute, e.minuteCount)
		d.RemainingHour = remaining(limits.PerHour, e.hourCount)
		d.RemainingBurst = max(e.tokens, 0)
	}
	return d, nil
}

// Sweep drops expired records and sessions and rate entries untouched for
// over an hour (both of their windows have rolled by then). Called from the
// housekeeping loop.
func (s *Store) Sweep(now time.Time) {
	s.mu.Lock()
	for jti, entry := range s.records {
		if !entry.deadline.IsZero() && now.After(entry.deadline) {
			delete(s.records, jti)
		}
	}
	for handle, entry := range s.sessions {
		if !entry.deadline.IsZero() && now.After(entry.deadline) {
			delete(s.sessions, handle)
		}
	}
	s.mu.Unlock()

	unix := now.Unix()
	s.rates.Range(func(k, v any) bool {
		e := v.(*rateEntry)
		e.mu.Lock()
		stale := unix-e.touched > 3600
		e.mu.Unlock()
		if stale {
			s.rates.Delete(k)
		}
		return true
	})
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

func remaining(limit, count int) int {
	if r := limit - count; r > 0 {
		return r
	}
	return 0
}
