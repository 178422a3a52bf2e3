package domain

import "net/http"

// Kind classifies every way a delegation request can be denied. The
// values double as wire error codes, so they stay snake_case.
type Kind string

const (
	KindAuthenticationRequired Kind = "authentication_required"
	KindTokenInvalid           Kind = "token_invalid"
	KindTokenExpired           Kind = "token_expired"
	KindTokenRevoked           Kind = "token_revoked"
	KindDeviceMismatch         Kind = "device_mismatch"
	KindScopeDenied            Kind = "scope_denied"
	KindRateLimited            Kind = "rate_limited"
	KindBackendUnavailable     Kind = "backend_unavailable"
	KindConsentMissing         Kind = "consent_missing"
)

// HTTPStatus maps the kind onto the response status the enforcement
// layer and the control endpoints use.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAuthenticationRequired, KindTokenInvalid, KindTokenExpired, KindTokenRevoked:
		return http.StatusUnauthorized
	case KindDeviceMismatch, KindScopeDenied:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBackendUnavailable:
		return http.StatusServiceUnavailable
	case KindConsentMissing:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Terminal reports whether a failure of this kind must never be retried
// with the same input. Rate limits are the only retryable denial.
func (k Kind) Terminal() bool {
	return k != KindRateLimited && k != KindBackendUnavailable
}

// AuthError is a classified denial. The services return it so callers
// can map a failure onto a status code and wire envelope without
// sniffing error strings.
type AuthError struct {
	Kind    Kind
	Message string

	// RetryAfter is the caller's retry hint in seconds. Set only for
	// rate-limit denials.
	RetryAfter int
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// NewAuthError builds a classified denial.
func NewAuthError(kind Kind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}
