package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
)

func testRecord(jti string, now time.Time) domain.TokenRecord {
	return domain.TokenRecord{
		JTI:       jti,
		Subject:   "user-42",
		Service:   "reports-api",
		IssuedAt:  now,
		ExpiresAt: now.Add(15 * time.Minute),
	}
}

func TestRecordRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	rec := testRecord("01JABCDEF0000000000000001", now)
	require.NoError(t, s.PutRecord(ctx, rec, time.Hour))

	got, err := s.GetRecord(ctx, rec.JTI)
	require.NoError(t, err)
	require.Equal(t, rec.JTI, got.JTI)
	require.Equal(t, rec.Subject, got.Subject)
	require.Equal(t, rec.Service, got.Service)

	_, err = s.GetRecord(ctx, "01JABCDEF0000000000000002")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPutRecordKeepsDeadline(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	t.Run("zero ttl keeps the original deadline", func(t *testing.T) {
		rec := testRecord("01JKEEP00000000000000001", now)
		require.NoError(t, s.PutRecord(ctx, rec, 30*time.Millisecond))

		rec.Revoked = true
		require.NoError(t, s.PutRecord(ctx, rec, 0))

		got, err := s.GetRecord(ctx, rec.JTI)
		require.NoError(t, err)
		require.True(t, got.Revoked)

		time.Sleep(60 * time.Millisecond)
		_, err = s.GetRecord(ctx, rec.JTI)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("zero ttl on a missing key applies the floor", func(t *testing.T) {
		rec := testRecord("01JKEEP00000000000000002", now)
		require.NoError(t, s.PutRecord(ctx, rec, 0))

		_, err := s.GetRecord(ctx, rec.JTI)
		require.NoError(t, err)
	})

	t.Run("positive ttl resets the deadline", func(t *testing.T) {
		rec := testRecord("01JKEEP00000000000000003", now)
		require.NoError(t, s.PutRecord(ctx, rec, 20*time.Millisecond))
		require.NoError(t, s.PutRecord(ctx, rec, time.Hour))

		time.Sleep(40 * time.Millisecond)
		_, err := s.GetRecord(ctx, rec.JTI)
		require.NoError(t, err)
	})
}

func TestRecordExpiry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	rec := testRecord("01JEXPIRE000000000000001", time.Now())
	require.NoError(t, s.PutRecord(ctx, rec, 20*time.Millisecond))

	time.Sleep(40 * time.Millisecond)
	_, err := s.GetRecord(ctx, rec.JTI)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionConsumeOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	sess := domain.Session{UserID: "user-42", Service: "reports-api", CreatedAt: time.Now()}
	require.NoError(t, s.PutSession(ctx, "handle-1", sess, time.Minute))

	got, err := s.ConsumeSession(ctx, "handle-1")
	require.NoError(t, err)
	require.Equal(t, "user-42", got.UserID)
	require.Equal(t, "reports-api", got.Service)

	_, err = s.ConsumeSession(ctx, "handle-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionExpiry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	sess := domain.Session{UserID: "user-42", Service: "reports-api", CreatedAt: time.Now()}
	require.NoError(t, s.PutSession(ctx, "handle-2", sess, 20*time.Millisecond))

	time.Sleep(40 * time.Millisecond)
	_, err := s.ConsumeSession(ctx, "handle-2")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckAndConsumeMinuteWindow(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	limits := domain.Limits{PerMinute: 5, PerHour: 300, Burst: 10}
	now := time.Unix(1_755_000_000, 0) // exact minute boundary

	for i := 0; i < 5; i++ {
		d, err := s.CheckAndConsume(ctx, "u1:/api/reports", limits, now)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
		require.Equal(t, 4-i, d.RemainingMinute)
	}

	d, err := s.CheckAndConsume(ctx, "u1:/api/reports", limits, now)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.RemainingMinute)
	require.Equal(t, 60, d.RetryAfter)

	// A denied request consumes nothing from the hour window.
	require.Equal(t, 295, d.RemainingHour)

	d, err = s.CheckAndConsume(ctx, "u1:/api/reports", limits, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 4, d.RemainingMinute)
}

func TestCheckAndConsumeHourWindow(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	limits := domain.Limits{PerMinute: 10, PerHour: 3, Burst: 10}
	now := time.Unix(1_755_000_000, 0)

	for i := 0; i < 3; i++ {
		d, err := s.CheckAndConsume(ctx, "u2:/api/reports", limits, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	d, err := s.CheckAndConsume(ctx, "u2:/api/reports", limits, now.Add(3*time.Minute))
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.RemainingHour)
	require.Equal(t, 3600-3*60, d.RetryAfter)

	d, err = s.CheckAndConsume(ctx, "u2:/api/reports", limits, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestCheckAndConsumeBurst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	limits := domain.Limits{PerMinute: 100, PerHour: 6000, Burst: 2}
	now := time.Unix(1_755_000_000, 0)

	for i := 0; i < 2; i++ {
		d, err := s.CheckAndConsume(ctx, "u3:/api/reports", limits, now)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	d, err := s.CheckAndConsume(ctx, "u3:/api/reports", limits, now)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.RemainingBurst)
	require.Equal(t, 1, d.RetryAfter)

	// One token per elapsed second, capped at the bucket size.
	d, err = s.CheckAndConsume(ctx, "u3:/api/reports", limits, now.Add(2*time.Second))
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.RemainingBurst)

	d, err = s.CheckAndConsume(ctx, "u3:/api/reports", limits, now.Add(30*time.Second))
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, limits.Burst-1, d.RemainingBurst)
}

func TestCheckAndConsumeDistinctKeys(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	limits := domain.Limits{PerMinute: 1, PerHour: 60, Burst: 5}
	now := time.Unix(1_755_000_000, 0)

	d, err := s.CheckAndConsume(ctx, "a:/x", limits, now)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = s.CheckAndConsume(ctx, "a:/x", limits, now)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = s.CheckAndConsume(ctx, "b:/x", limits, now)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestCheckAndConsumeConcurrent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	limits := domain.Limits{PerMinute: 50, PerHour: 3000, Burst: 50}
	now := time.Unix(1_755_000_000, 0)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := s.CheckAndConsume(ctx, "hot:/api/reports", limits, now)
			if err != nil {
				t.Error(err)
				return
			}
			if d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(50), allowed.Load())
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("drops expired records and sessions", func(t *testing.T) {
		s := NewStore()
		now := time.Now()

		require.NoError(t, s.PutRecord(ctx, testRecord("01JSWEEP0000000000000001", now), 10*time.Millisecond))
		require.NoError(t, s.PutRecord(ctx, testRecord("01JSWEEP0000000000000002", now), time.Hour))
		require.NoError(t, s.PutSession(ctx, "stale", domain.Session{UserID: "u"}, 10*time.Millisecond))
		require.NoError(t, s.PutSession(ctx, "fresh", domain.Session{UserID: "u"}, time.Hour))

		time.Sleep(30 * time.Millisecond)
		s.Sweep(time.Now())

		s.mu.RLock()
		_, staleRecord := s.records["01JSWEEP0000000000000001"]
		_, liveRecord := s.records["01JSWEEP0000000000000002"]
		_, staleSession := s.sessions["stale"]
		_, liveSession := s.sessions["fresh"]
		s.mu.RUnlock()

		require.False(t, staleRecord)
		require.True(t, liveRecord)
		require.False(t, staleSession)
		require.True(t, liveSession)
	})

	t.Run("drops rate entries idle for over an hour", func(t *testing.T) {
		s := NewStore()
		limits := domain.Limits{PerMinute: 10, PerHour: 600, Burst: 10}
		base := time.Unix(1_755_000_000, 0)

		_, err := s.CheckAndConsume(ctx, "old:/x", limits, base)
		require.NoError(t, err)
		_, err = s.CheckAndConsume(ctx, "live:/x", limits, base.Add(90*time.Minute))
		require.NoError(t, err)

		s.Sweep(base.Add(2 * time.Hour))

		_, ok := s.rates.Load("old:/x")
		require.False(t, ok)
		_, ok = s.rates.Load("live:/x")
		require.True(t, ok)
	})
}

func TestContextCancellation(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, s.PutRecord(ctx, testRecord("01JCTX000000000000000001", time.Now()), time.Hour))
	_, err := s.GetRecord(ctx, "01JCTX000000000000000001")
	require.Error(t, err)
	_, err = s.CheckAndConsume(ctx, "k", domain.Limits{PerMinute: 1, PerHour: 1, Burst: 1}, time.Now())
	require.Error(t, err)
}
