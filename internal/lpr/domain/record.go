package domain

import "time"

// TokenRecord is the revocation-store entry written for every minted
// token. It exists so a token can be revoked and so the status endpoint
// can answer without parsing the token itself. Stored as JSON in the
// flag store, flipped at most once.
type TokenRecord struct {
	JTI        string     `json:"jti"`
	Subject    string     `json:"subject"`
	Service    string     `json:"service"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ScopeCount int        `json:"scope_count"`
	Revoked    bool       `json:"revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	RevokedBy  string     `json:"revoked_by,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// TokenStatus is the lifecycle state the status endpoint reports.
type TokenStatus string

const (
	StatusActive   TokenStatus = "active"
	StatusRevoked  TokenStatus = "revoked"
	StatusExpired  TokenStatus = "expired"
	StatusNotFound TokenStatus = "notFound"
)

// Status derives the lifecycle state at the given instant. Revocation
// wins over expiry: an admin looking up a dead token wants to know it
// was killed, not that it also timed out.
func (r *TokenRecord) Status(now time.Time) TokenStatus {
	if r.Revoked {
		return StatusRevoked
	}
	if now.After(r.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// RemainingTTL returns how long the token is still good for, zero once
// expired or revoked.
func (r *TokenRecord) RemainingTTL(now time.Time) time.Duration {
	if r.Revoked || now.After(r.ExpiresAt) {
		return 0
	}
	return r.ExpiresAt.Sub(now)
}

// MinRecordTTL is the floor for revocation-record retention. A record
// must outlive the longest token lifetime so a revoke flag can never
// vanish before its token does.
const MinRecordTTL = time.Hour

// RecordTTL computes the store TTL for a record: at least the remaining
// token lifetime, at least the explicit request, never below the floor.
func RecordTTL(explicit time.Duration, expiresAt, now time.Time) time.Duration {
	ttl := MinRecordTTL
	if remaining := expiresAt.Sub(now); remaining > ttl {
		ttl = remaining
	}
	if explicit > ttl {
		ttl = explicit
	}
	return ttl
}
