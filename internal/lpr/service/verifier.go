package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

// Verifier checks delegation tokens through the fixed pipeline: signature
// and standard claims, revocation state, device binding, origin, scope. The
// first failing step decides the outcome; later steps never run.
//
// Verify never mutates anything, so it is safe for unlimited concurrent
// calls.
type Verifier struct {
	Tokens jwtx.Verifier
	Store  store.Store
	Audit  audit.Sink

	// Service pins the expected audience. Empty means the token's own
	// audience is surfaced without being checked (the bare verify API).
	Service string

	// StrictDevice blocks on fingerprint mismatch. When false a mismatch
	// is logged and audited but the request passes.
	StrictDevice bool
}

type VerifyRequest struct {
	Token       string
	Fingerprint string
	Origin      string
	Required    *jwtx.Scope
}

// VerificationResult reports the outcome. Kind is set exactly when Valid is
// false; identity fields are filled as far as the pipeline got.
type VerificationResult struct {
	Valid     bool
	Kind      domain.Kind
	Message   string
	JTI       string
	Subject   string
	Service   string
	Scopes    []jwtx.Scope
	ExpiresAt time.Time

	// Claims holds the full verified claims on success so the enforcement
	// layer can read the token policy. Zero on denial.
	Claims jwtx.Claims
}

func (s *Verifier) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Signature, expiry, issuer.
	claims, err := s.Tokens.Verify(req.Token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return deny(domain.KindTokenExpired, "token expired"), nil
		}
		return deny(domain.KindTokenInvalid, "token invalid"), nil
	}

	if s.Service != "" {
		if err := claims.ValidateAudience([]string{s.Service}); err != nil {
			return denyClaims(claims, domain.KindTokenInvalid, "token not issued for this service"), nil
		}
	}

	// 2. Revocation state.
	rec, err := s.Store.GetRecord(ctx, claims.ID)
	switch {
	case err == nil:
		if rec.Revoked {
			return denyClaims(claims, domain.KindTokenRevoked, "token revoked"), nil
		}
	case errors.Is(err, store.ErrNotFound):
		// No record means nothing marked it revoked. This happens after a
		// fail-open window; the signature already proved we minted it.
	case errors.Is(err, store.ErrUnavailable):
		return denyClaims(claims, domain.KindBackendUnavailable, "revocation state unavailable"), nil
	default:
		return VerificationResult{}, err
	}

	// 3. Device binding. Mismatches are always audited; strict mode also
	// blocks.
	if req.Fingerprint != "" && claims.DFP != "" && req.Fingerprint != claims.DFP {
		s.auditDeviceMismatch(ctx, claims)
		l.Warn("device fingerprint mismatch",
			"jti", claims.ID,
			"subject", claims.Subject,
			"strict", s.StrictDevice)
		if s.StrictDevice {
			return denyClaims(claims, domain.KindDeviceMismatch, "device fingerprint mismatch"), nil
		}
	}

	// 4. Origin membership, only for tokens that carry an origin list.
	if req.Origin != "" && len(claims.Origins) > 0 && !slices.Contains(claims.Origins, req.Origin) {
		return denyClaims(claims, domain.KindScopeDenied, "request origin not allowed"), nil
	}

	// 5. Scope authorization.
	if req.Required != nil && !domain.Authorize(*req.Required, claims.Scopes) {
		return denyClaims(claims, domain.KindScopeDenied, "scope not granted"), nil
	}

	return VerificationResult{
		Valid:     true,
		JTI:       claims.ID,
		Subject:   claims.Subject,
		Service:   claims.Service(),
		Scopes:    claims.Scopes,
		ExpiresAt: tokenExpiry(claims),
		Claims:    claims,
	}, nil
}

func (s *Verifier) auditDeviceMismatch(ctx context.Context, c jwtx.Claims) {
	e := audit.NewEvent(audit.TypeToken, audit.ActionDeviceMismatch)
	e.Actor = c.Subject
	e.Target = c.ID
	e.CorrelationID = slogx.CorrelationID(ctx)
	if s.StrictDevice {
		e.Result = audit.ResultDenied
	} else {
		e.Result = audit.ResultSuccess
	}
	e = e.WithDetail("strict", s.StrictDevice).WithDetail("service", c.Service())
	_ = s.Audit.Log(ctx, e)
}

func deny(kind domain.Kind, msg string) VerificationResult {
	return VerificationResult{Kind: kind, Message: msg}
}

func denyClaims(c jwtx.Claims, kind domain.Kind, msg string) VerificationResult {
	r := deny(kind, msg)
	r.JTI = c.ID
	r.Subject = c.Subject
	r.Service = c.Service()
	r.ExpiresAt = tokenExpiry(c)
	return r
}

func tokenExpiry(c jwtx.Claims) time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
