// Package service implements the credential operations: issuance,
// verification, revocation, rate limiting, and background housekeeping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/idx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

var (
	ErrMissingSubject = errors.New("missing_subject")
	ErrMissingService = errors.New("missing_service")
	ErrNoScopes       = errors.New("no_scopes")
)

// Issuer mints delegation tokens. Every issued token is recorded in the
// revocation store before it is released; a token we could not revoke must
// not exist.
type Issuer struct {
	Ring   *jwtx.Keyring
	Store  store.Store
	Audit  audit.Sink
	Issuer string

	// TTL applies when the request carries none. Zero falls through to
	// the library default (15m).
	TTL time.Duration
}

type IssueRequest struct {
	Subject     string
	Service     string
	Scopes      []jwtx.Scope
	Origins     []string
	TTL         time.Duration
	Policy      *jwtx.Policy
	Fingerprint string
	Purpose     string
	Consent     *jwtx.Consent
}

type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
	Scopes    []jwtx.Scope
}

func (s *Issuer) Issue(ctx context.Context, req IssueRequest) (IssuedToken, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)
	cid := slogx.CorrelationID(ctx)

	// 1. Consent gates everything. No consent, no token, no retry.
	if req.Consent == nil || !req.Consent.Granted {
		err := domain.NewAuthError(domain.KindConsentMissing, "delegation requires granted consent")
		s.auditIssue(ctx, audit.ResultDenied, req, "", cid, err.Error())
		return IssuedToken{}, err
	}

	// 2. Validate the delegation shape.
	if req.Subject == "" {
		return IssuedToken{}, ErrMissingSubject
	}
	if req.Service == "" {
		return IssuedToken{}, ErrMissingService
	}
	if len(req.Scopes) == 0 {
		s.auditIssue(ctx, audit.ResultDenied, req, "", cid, ErrNoScopes.Error())
		return IssuedToken{}, ErrNoScopes
	}
	for _, sc := range req.Scopes {
		if err := sc.Validate(); err != nil {
			s.auditIssue(ctx, audit.ResultDenied, req, "", cid, err.Error())
			return IssuedToken{}, err
		}
	}

	consent := *req.Consent
	if consent.Purpose == "" {
		consent.Purpose = req.Purpose
	}
	if consent.Timestamp.IsZero() {
		consent.Timestamp = now
	}

	var policy jwtx.Policy
	if req.Policy != nil {
		policy = *req.Policy
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.TTL
	}

	// 3. Mint the jti and sign. NewClaims normalizes scopes, fills policy
	// defaults, and clamps the TTL to the one-hour ceiling.
	jti := idx.New().String()
	claims := jwtx.NewClaims(jti, req.Subject, req.Service, req.Scopes, req.Origins,
		policy, req.Fingerprint, cid, &consent, ttl, s.Issuer, now)

	token, err := s.Ring.Sign(claims)
	if err != nil {
		l.Error("failed to sign delegation token", "error", err)
		s.auditIssue(ctx, audit.ResultError, req, jti, cid, "sign failed")
		return IssuedToken{}, err
	}

	// 4. Record before release.
	rec := domain.TokenRecord{
		JTI:        jti,
		Subject:    req.Subject,
		Service:    req.Service,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
		ScopeCount: len(claims.Scopes),
	}
	if err := s.Store.PutRecord(ctx, rec, domain.RecordTTL(0, rec.ExpiresAt, now)); err != nil {
		l.Error("failed to write token record", "error", err, "jti", jti)
		s.auditIssue(ctx, audit.ResultError, req, jti, cid, "record write failed")
		if errors.Is(err, store.ErrUnavailable) {
			return IssuedToken{}, domain.NewAuthError(domain.KindBackendUnavailable, "revocation store unavailable")
		}
		return IssuedToken{}, err
	}

	s.auditIssue(ctx, audit.ResultSuccess, req, jti, cid, "")
	l.Info("issued delegation token",
		"jti", jti,
		"subject", req.Subject,
		"service", req.Service,
		"scopes", len(claims.Scopes),
		"expires_at", claims.ExpiresAt.Time)

	return IssuedToken{
		Token:     token,
		JTI:       jti,
		ExpiresAt: claims.ExpiresAt.Time,
		Scopes:    claims.Scopes,
	}, nil
}

func (s *Issuer) auditIssue(ctx context.Context, result string, req IssueRequest, jti, cid, reason string) {
	e := audit.NewEvent(audit.TypeToken, audit.ActionIssue)
	e.Actor = req.Subject
	e.Target = jti
	e.Result = result
	e.CorrelationID = cid
	e = e.WithDetail("service", req.Service).WithDetail("scope_count", len(req.Scopes))
	if req.Purpose != "" {
		e = e.WithDetail("purpose", req.Purpose)
	}
	if reason != "" {
		e = e.WithDetail("reason", reason)
	}
	_ = s.Audit.Log(ctx, e)
}
