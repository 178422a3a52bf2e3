package lprsdk

import (
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

// ErrorResponse is the wire error envelope every endpoint uses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SessionRequest parks an authenticated session so issuance can redeem
// it. The endpoint is guarded by a deployment-level grant token and is
// meant for the login collaborator, not end users.
type SessionRequest struct {
	// UserID is the authenticated user the session belongs to.
	UserID string `json:"user_id"`

	// Service is the target service any token minted from this session
	// will be issued for.
	Service string `json:"service"`
}

// SessionResponse carries the one-time handle. It is shown exactly once;
// the service keeps only a fingerprint.
type SessionResponse struct {
	SessionHandle string    `json:"session_handle"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IssueRequest asks the service to mint a delegation token. The subject
// and target service come from the consumed session handle, never from
// the request body.
type IssueRequest struct {
	// SessionHandle is the one-time handle the login collaborator parked
	// the authenticated session under. Consumed exactly once.
	SessionHandle string `json:"session_handle"`

	// Scopes are the operations being delegated. At least one required.
	Scopes []jwtx.Scope `json:"scopes"`

	// Origins restricts which request origins may present the token.
	// Empty means any origin.
	Origins []string `json:"origins,omitempty"`

	// TTLSeconds is the requested lifetime. Zero uses the service
	// default; the one-hour ceiling applies regardless.
	TTLSeconds int `json:"ttl_seconds,omitempty"`

	// Policy is the per-token rate limit. Nil applies the defaults.
	Policy *jwtx.Policy `json:"policy,omitempty"`

	// DeviceFingerprint binds the token to the requesting device.
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`

	// Purpose describes what the delegation is for, recorded in consent
	// and audit.
	Purpose string `json:"purpose,omitempty"`

	// Consent records the subject's explicit grant. Tokens are never
	// minted without Granted set.
	Consent *jwtx.Consent `json:"consent"`
}

// IssueResponse is the minted credential.
type IssueResponse struct {
	Token     string       `json:"token"`
	JTI       string       `json:"jti"`
	ExpiresAt time.Time    `json:"expires_at"`
	Scopes    []jwtx.Scope `json:"scopes"`
}

// VerifyRequest asks the service to run the verification pipeline against
// a token, optionally in the context of a concrete request.
type VerifyRequest struct {
	Token string `json:"token"`

	// RequestMethod and RequestURL form the required scope. Both empty
	// skips the scope check (pure validity lookup).
	RequestMethod string `json:"request_method,omitempty"`
	RequestURL    string `json:"request_url,omitempty"`

	// RequestOrigin is checked against the token's origin list when the
	// token carries one.
	RequestOrigin string `json:"request_origin,omitempty"`

	// DeviceFingerprint is compared to the token's binding when both are
	// present.
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
}

// VerifyResponse reports the pipeline outcome. The endpoint answers 200
// for both verdicts; Valid carries the result and Error the denial code.
type VerifyResponse struct {
	Valid            bool         `json:"valid"`
	JTI              string       `json:"jti,omitempty"`
	Subject          string       `json:"subject,omitempty"`
	Service          string       `json:"service,omitempty"`
	Scopes           []jwtx.Scope `json:"scopes,omitempty"`
	ExpiresAt        *time.Time   `json:"expires_at,omitempty"`
	Error            string       `json:"error,omitempty"`
	ErrorDescription string       `json:"error_description,omitempty"`
}

// RevokeRequest kills a token by jti.
type RevokeRequest struct {
	JTI    string `json:"jti"`
	Reason string `json:"reason,omitempty"`
}

// RevokeResponse confirms the flag is set. Revoking an already-revoked or
// unknown jti also succeeds.
type RevokeResponse struct {
	Revoked bool   `json:"revoked"`
	JTI     string `json:"jti"`
}

// StatusResponse is the lifecycle report for a token.
type StatusResponse struct {
	JTI                 string     `json:"jti"`
	Status              string     `json:"status"`
	Subject             string     `json:"subject,omitempty"`
	Service             string     `json:"service,omitempty"`
	IssuedAt            *time.Time `json:"issued_at,omitempty"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	ScopeCount          int        `json:"scope_count,omitempty"`
	RemainingTTLSeconds int64      `json:"remaining_ttl_seconds"`
}

// Lifecycle states StatusResponse.Status reports.
const (
	StatusActive   = "active"
	StatusRevoked  = "revoked"
	StatusExpired  = "expired"
	StatusNotFound = "notFound"
)

// JWKSResponse contains the JSON Web Key Set.
type JWKSResponse jwtx.JWKS

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Store  string `json:"store,omitempty"`
	Signer string `json:"signer,omitempty"`
}

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`

	// Mode reports "primary" or "fallback" when a failover store is
	// configured.
	Mode string `json:"mode,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}
