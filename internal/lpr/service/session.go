package service

import (
	"context"
	"errors"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

var (
	ErrGrantUnauthorized = errors.New("unauthorized session grant attempt")
	ErrMissingUser       = errors.New("missing_user_id")
	ErrSessionNotFound   = errors.New("session_not_found")
)

// DefaultSessionTTL bounds how long a granted handle stays redeemable.
const DefaultSessionTTL = 2 * time.Minute

// SessionGrantor hands out one-time session handles after interactive
// login and redeems them during issuance. Handles are random 256-bit
// strings; the store only ever sees their fingerprint, so a dumped
// backend cannot be replayed into tokens.
type SessionGrantor struct {
	Store store.Store

	// Token guards the HTTP grant endpoint. Empty disables granting over
	// HTTP entirely; the login collaborator then seeds sessions directly
	// through Seed.
	Token string

	// TTL bounds handle redemption. Zero means DefaultSessionTTL.
	TTL time.Duration
}

func (s *SessionGrantor) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// Grant validates the caller's grant token and stores a pending session.
// The raw handle is returned exactly once; only its fingerprint persists.
func (s *SessionGrantor) Grant(ctx context.Context, token, userID, service string) (string, time.Time, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate provided token
	if token != s.Token {
		l.Warn("unauthorized session grant attempt", "user_id", userID)
		return "", time.Time{}, ErrGrantUnauthorized
	}

	// 2. Validate the session shape
	if userID == "" {
		return "", time.Time{}, ErrMissingUser
	}
	if service == "" {
		return "", time.Time{}, ErrMissingService
	}

	// 3. Mint the handle and store the session under its fingerprint
	handle, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate session handle", "error", err)
		return "", time.Time{}, err
	}
	expiresAt, err := s.Seed(ctx, handle, userID, service)
	if err != nil {
		return "", time.Time{}, err
	}

	l.Info("granted delegation session", "user_id", userID, "service", service)
	return handle, expiresAt, nil
}

// Seed stores a session for a handle the caller already holds. Login
// collaborators running in-process and tests use this directly.
func (s *SessionGrantor) Seed(ctx context.Context, handle, userID, service string) (time.Time, error) {
	ttl := s.ttl()
	sess := domain.Session{
		UserID:    userID,
		Service:   service,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.PutSession(ctx, cryptox.Fingerprint(handle), sess, ttl); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return time.Time{}, domain.NewAuthError(domain.KindBackendUnavailable, "session store unavailable")
		}
		return time.Time{}, err
	}
	return sess.CreatedAt.Add(ttl), nil
}

// Redeem consumes the session for handle. A handle redeems exactly once;
// expiry and prior redemption are indistinguishable to the caller.
func (s *SessionGrantor) Redeem(ctx context.Context, handle string) (domain.Session, error) {
	if handle == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	sess, err := s.Store.ConsumeSession(ctx, cryptox.Fingerprint(handle))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Session{}, ErrSessionNotFound
	case errors.Is(err, store.ErrUnavailable):
		return domain.Session{}, domain.NewAuthError(domain.KindBackendUnavailable, "session store unavailable")
	case err != nil:
		return domain.Session{}, err
	}
	return sess, nil
}
