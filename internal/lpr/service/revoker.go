package service

import (
	"context"
	"errors"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

var ErrMissingJTI = errors.New("missing_jti")

// Revoker flips the revocation flag on issued tokens and answers status
// lookups. Revocation is permanent and idempotent: a second revoke of the
// same token changes nothing, and revoking a JTI the store has never seen
// plants a tombstone so the flag holds even when the issuance record was
// lost in a failover window.
type Revoker struct {
	Store store.Store
	Audit audit.Sink
}

// Revoke marks the token dead. The record keeps the deadline set at
// issuance, so the flag outlives the token itself.
func (s *Revoker) Revoke(ctx context.Context, jti, reason, revokedBy string) error {
	l := slogx.FromContext(ctx)
	cid := slogx.CorrelationID(ctx)

	if jti == "" {
		return ErrMissingJTI
	}

	now := time.Now().UTC()

	// 1. Load the record the issuer wrote.
	rec, err := s.Store.GetRecord(ctx, jti)
	tombstone := false
	switch {
	case err == nil:
		if rec.Revoked {
			s.auditRevoke(ctx, audit.ResultSuccess, jti, cid, revokedBy, reason, false, true)
			l.Info("token already revoked", "jti", jti)
			return nil
		}
	case errors.Is(err, store.ErrNotFound):
		// Unknown JTI. The record may have been lost while the token is
		// still out there, so write the flag anyway.
		rec = domain.TokenRecord{JTI: jti}
		tombstone = true
	case errors.Is(err, store.ErrUnavailable):
		s.auditRevoke(ctx, audit.ResultError, jti, cid, revokedBy, reason, false, false)
		return domain.NewAuthError(domain.KindBackendUnavailable, "revocation store unavailable")
	default:
		return err
	}

	// 2. Flip the flag in place.
	rec.Revoked = true
	rec.RevokedAt = &now
	rec.RevokedBy = revokedBy
	rec.Reason = reason

	// Zero TTL keeps the deadline from issuance. Tombstones have no
	// deadline to keep and get the retention floor instead.
	var ttl time.Duration
	if tombstone {
		ttl = domain.MinRecordTTL
	}
	if err := s.Store.PutRecord(ctx, rec, ttl); err != nil {
		l.Error("revocation write failed", "jti", jti, "error", err)
		s.auditRevoke(ctx, audit.ResultError, jti, cid, revokedBy, reason, tombstone, false)
		if errors.Is(err, store.ErrUnavailable) {
			return domain.NewAuthError(domain.KindBackendUnavailable, "revocation store unavailable")
		}
		return err
	}

	s.auditRevoke(ctx, audit.ResultSuccess, jti, cid, revokedBy, reason, tombstone, false)
	l.Info("revoked delegation token", "jti", jti, "revoked_by", revokedBy, "tombstone", tombstone)
	return nil
}

// IsRevoked reports whether the flag is set. A JTI the store has never
// seen is not revoked.
func (s *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	rec, err := s.Store.GetRecord(ctx, jti)
	switch {
	case err == nil:
		return rec.Revoked, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	case errors.Is(err, store.ErrUnavailable):
		return false, domain.NewAuthError(domain.KindBackendUnavailable, "revocation store unavailable")
	}
	return false, err
}

// TokenStatus is the lifecycle report for one token, served without
// parsing the token itself.
type TokenStatus struct {
	JTI          string
	Status       domain.TokenStatus
	Subject      string
	Service      string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	ScopeCount   int
	RemainingTTL time.Duration
}

// Status reports the token's lifecycle state. Unknown JTIs come back as
// StatusNotFound with a nil error; only backend trouble is an error.
func (s *Revoker) Status(ctx context.Context, jti string) (TokenStatus, error) {
	rec, err := s.Store.GetRecord(ctx, jti)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return TokenStatus{JTI: jti, Status: domain.StatusNotFound}, nil
	case errors.Is(err, store.ErrUnavailable):
		return TokenStatus{}, domain.NewAuthError(domain.KindBackendUnavailable, "revocation store unavailable")
	case err != nil:
		return TokenStatus{}, err
	}

	now := time.Now().UTC()
	return TokenStatus{
		JTI:          rec.JTI,
		Status:       rec.Status(now),
		Subject:      rec.Subject,
		Service:      rec.Service,
		IssuedAt:     rec.IssuedAt,
		ExpiresAt:    rec.ExpiresAt,
		ScopeCount:   rec.ScopeCount,
		RemainingTTL: rec.RemainingTTL(now),
	}, nil
}

func (s *Revoker) auditRevoke(ctx context.Context, result, jti, cid, revokedBy, reason string, tombstone, already bool) {
	e := audit.NewEvent(audit.TypeToken, audit.ActionRevoke)
	e.Actor = revokedBy
	e.Target = jti
	e.Result = result
	e.CorrelationID = cid
	if reason != "" {
		e = e.WithDetail("reason", reason)
	}
	if tombstone {
		e = e.WithDetail("tombstone", true)
	}
	if already {
		e = e.WithDetail("already_revoked", true)
	}
	_ = s.Audit.Log(ctx, e)
}
