// Package redis is the shared-state store driver. Records and sessions are
// JSON values with native Redis TTLs; the rate-limit step runs as a single
// Lua script so concurrent instances can never over-admit.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
)

// opTimeout bounds every Redis call so a wedged backend degrades to the
// fallback store instead of stalling requests.
const opTimeout = 500 * time.Millisecond

type Store struct {
	client *goredis.Client
}

var _ store.Store = (*Store)(nil)

// NewStore builds a driver from a redis:// URL. The connection is lazy; the
// first Ping reports whether the backend is actually reachable.
func NewStore(redisURL string) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{client: goredis.NewClient(opts)}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return wrapErr(s.client.Ping(ctx).Err())
}

func (s *Store) PutRecord(ctx context.Context, rec domain.TokenRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	key := recordKey(rec.JTI)
	if ttl > 0 {
		return wrapErr(s.client.Set(ctx, key, payload, ttl).Err())
	}

	// Revoke flip: overwrite in place and keep the deadline set at
	// issuance. If the key expired under us, re-create it with the floor
	// TTL so the tombstone still outlives in-flight requests.
	ok, err := s.client.SetXX(ctx, key, payload, goredis.KeepTTL).Result()
	if err != nil {
		return wrapErr(err)
	}
	if !ok {
		return wrapErr(s.client.Set(ctx, key, payload, domain.MinRecordTTL).Err())
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, jti string) (domain.TokenRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, recordKey(jti)).Result()
	if err != nil {
		return domain.TokenRecord{}, wrapErr(err)
	}

	var rec domain.TokenRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return domain.TokenRecord{}, fmt.Errorf("decode record %s: %w", jti, err)
	}
	return rec, nil
}

func (s *Store) PutSession(ctx context.Context, handle string, sess domain.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	return wrapErr(s.client.Set(ctx, sessionKey(handle), payload, ttl).Err())
}

// ConsumeSession redeems a handle with GETDEL, so two racing redemptions can
// never both succeed.
func (s *Store) ConsumeSession(ctx context.Context, handle string) (domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := s.client.GetDel(ctx, sessionKey(handle)).Result()
	if err != nil {
		return domain.Session{}, wrapErr(err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// rateScript checks and consumes all three budgets in one atomic step.
//
//	KEYS[1] minute counter   KEYS[2] hour counter   KEYS[3] burst bucket
//	ARGV[1] perMinute  ARGV[2] perHour  ARGV[3] burst  ARGV[4] now (unix)
//
// Reply: {allowed, remainingMinute, remainingHour, remainingBurst, retryAfter}.
// A denied call writes nothing.
var rateScript = goredis.NewScript(`
local m = tonumber(redis.call('GET', KEYS[1]) or '0')
local h = tonumber(redis.call('GET', KEYS[2]) or '0')
local perMin = tonumber(ARGV[1])
local perHour = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local b = redis.call('HMGET', KEYS[3], 't', 'r')
local tokens = tonumber(b[1])
local last = tonumber(b[2])
if tokens == nil then
  tokens = burst
  last = now
elseif now > last then
  tokens = math.min(burst, tokens + (now - last))
  last = now
end

local remMin = math.max(perMin - m, 0)
local remHour = math.max(perHour - h, 0)

if m >= perMin then
  return {0, remMin, remHour, math.max(tokens, 0), 60 - (now % 60)}
end
if h >= perHour then
  return {0, remMin, remHour, math.max(tokens, 0), 3600 - (now % 3600)}
end
if tokens <= 0 then
  return {0, remMin, remHour, 0, 1}
end

tokens = tokens - 1
redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], 120)
redis.call('INCR', KEYS[2])
redis.call('EXPIRE', KEYS[2], 7200)
redis.call('HSET', KEYS[3], 't', tokens, 'r', last)
redis.call('EXPIRE', KEYS[3], 120)
return {1, math.max(perMin - m - 1, 0), math.max(perHour - h - 1, 0), math.max(tokens, 0), 0}
`)

func (s *Store) CheckAndConsume(ctx context.Context, key string, limits domain.Limits, now time.Time) (domain.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	unix := now.Unix()
	keys := []string{
		fmt.Sprintf("lpr:rl:%s:m:%d", key, unix/60),
		fmt.Sprintf("lpr:rl:%s:h:%d", key, unix/3600),
		fmt.Sprintf("lpr:rl:%s:b", key),
	}

	res, err := rateScript.Run(ctx, s.client, keys, limits.PerMinute, limits.PerHour, limits.Burst, unix).Int64Slice()
	if err != nil {
		return domain.Decision{}, wrapErr(err)
	}
	if len(res) != 5 {
		return domain.Decision{}, fmt.Errorf("store: redis: unexpected rate reply length %d", len(res))
	}

	return domain.Decision{
		Allowed:         res[0] == 1,
		RemainingMinute: int(res[1]),
		RemainingHour:   int(res[2]),
		RemainingBurst:  int(res[3]),
		RetryAfter:      int(res[4]),
	}, nil
}

func recordKey(jti string) string     { return "lpr:rec:" + jti }
func sessionKey(handle string) string { return "lpr:sess:" + handle }

// wrapErr maps redis.Nil to the store's not-found sentinel and everything
// else to ErrUnavailable so the failover wrapper can react.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, goredis.Nil) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
