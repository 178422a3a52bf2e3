package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetime bounds. Delegation tokens are deliberately short-lived;
// anything longer than MaxTokenTTL gets clamped at issuance.
const (
	// DefaultTokenTTL is used when the issuance request doesn't ask for
	// a specific lifetime.
	DefaultTokenTTL = 15 * time.Minute

	// MaxTokenTTL is the hard ceiling on token lifetime. Requests above
	// this are clamped, never honoured.
	MaxTokenTTL = time.Hour
)

// TokenPrefix marks every token we mint so leaked credentials can be
// spotted by secret scanners. Verification strips it before parsing.
const TokenPrefix = "lpr_"

// Claims are the delegation-token claims shared by the issuer and every
// verifying service. Keep changes additive to preserve compatibility.
type Claims struct {
	jwt.RegisteredClaims

	/* Delegation custom fields */

	// Scopes list the exact operations this token may perform.
	// An empty list means the token authorises nothing.
	Scopes []Scope `json:"scopes"`

	// Origins restricts which Origin header values may present this
	// token. Empty means any origin.
	Origins []string `json:"origins,omitempty"`

	// Policy is the per-token rate limit the holder agreed to.
	Policy Policy `json:"policy"`

	// DFP is the device fingerprint hash the token is bound to.
	// Empty means the token is not device-bound.
	DFP string `json:"dfp,omitempty"`

	// CID is the correlation ID minted at issuance, threaded through
	// every downstream log and audit record.
	CID string `json:"cid,omitempty"`

	// Consent records that the subject explicitly granted this
	// delegation. Tokens are never minted without it.
	Consent *Consent `json:"consent,omitempty"`
}

// Consent captures the subject's explicit grant for the delegation.
type Consent struct {
	Granted   bool      `json:"granted"`
	Timestamp time.Time `json:"timestamp"`
	Purpose   string    `json:"purpose,omitempty"`
}

// NewClaims builds minimally-correct delegation claims. The audience is
// the single target service the token is scoped to.
func NewClaims(
	jti, subject, service string,
	scopes []Scope,
	origins []string,
	policy Policy,
	dfp, cid string,
	consent *Consent,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	normalized := make([]Scope, len(scopes))
	for i, s := range scopes {
		normalized[i] = s.Normalize()
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{service},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ClampTTL(ttl))),
			ID:        jti,
		},
		Scopes:  normalized,
		Origins: origins,
		Policy:  policy.Normalize(),
		DFP:     dfp,
		CID:     cid,
		Consent: consent,
	}
}

// ClampTTL applies the lifetime bounds: non-positive requests fall back
// to the default, oversized requests are capped at the ceiling.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTokenTTL
	}
	if ttl > MaxTokenTTL {
		return MaxTokenTTL
	}
	return ttl
}

// Service returns the target service this token is scoped to.
func (c *Claims) Service() string {
	if len(c.Audience) == 0 {
		return ""
	}
	return c.Audience[0]
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	// Check expired (exp)
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	// Check a token isn't used before it becomes valid (nbf)
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateConsent ensures an explicit grant is attached. The issuer
// calls this before signing anything.
func (c *Claims) ValidateConsent() error {
	if c.Consent == nil || !c.Consent.Granted {
		return ErrConsentMissing
	}
	return nil
}
