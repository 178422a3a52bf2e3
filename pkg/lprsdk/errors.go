package lprsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// ============================================================================
// Wire Error Codes
// ============================================================================

const (
	// Error codes the service emits. These match the denial taxonomy the
	// enforcement pipeline classifies every failure into.
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeAuthenticationRequired = "authentication_required"
	ErrorCodeTokenInvalid           = "token_invalid"
	ErrorCodeTokenExpired           = "token_expired"
	ErrorCodeTokenRevoked           = "token_revoked"
	ErrorCodeDeviceMismatch         = "device_mismatch"
	ErrorCodeScopeDenied            = "scope_denied"
	ErrorCodeRateLimited            = "rate_limited"
	ErrorCodeBackendUnavailable     = "backend_unavailable"
	ErrorCodeConsentMissing         = "consent_missing"
	ErrorCodeServerError            = "server_error"
)

// ============================================================================
// APIError - wire error envelope
// ============================================================================

// APIError is the service's error envelope. It implements the error
// interface and is used both by the server (to write HTTP responses) and
// by the SDK client (to represent failures).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "token_revoked")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// RetryAfter carries the server's retry hint in seconds. Only set on
	// rate_limited and backend_unavailable responses.
	RetryAfter int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter, carries an invalid value, or is otherwise malformed.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidJSONBody is returned when the JSON body cannot be parsed.
	ErrInvalidJSONBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid json body",
	}

	// ErrAuthenticationRequired is returned when no delegation token was
	// presented on an enforced route.
	ErrAuthenticationRequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAuthenticationRequired,
		Description: "a delegation token is required",
	}

	// ErrSessionInvalid is returned when the issuance session handle is
	// missing, unknown, expired, or already consumed.
	ErrSessionInvalid = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAuthenticationRequired,
		Description: "session handle is missing, expired, or already used",
	}

	// ErrConsentMissing is returned when issuance was attempted without a
	// granted consent. This is terminal; retrying cannot help.
	ErrConsentMissing = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeConsentMissing,
		Description: "delegation requires granted consent",
	}

	// ErrBackendUnavailable is returned when the revocation or rate-limit
	// backend could not answer and the service runs fail-closed.
	ErrBackendUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeBackendUnavailable,
		Description: "a required backend is unavailable",
	}

	// ErrServerError is returned on unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrMethodNotAllowed is returned when the HTTP method is not allowed.
	ErrMethodNotAllowed = &APIError{
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        ErrorCodeInvalidRequest,
		Description: "method not allowed",
	}
)

// NewAPIError creates an APIError with the given status code, error code,
// and description. Useful for custom messages that keep the envelope shape.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns an HTTP error response into a typed *APIError.
// Returns nil when the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	retryAfter := 0
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if n, err := strconv.Atoi(ra); err == nil {
			retryAfter = n
		}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			RetryAfter:  retryAfter,
		}
	}

	// Fallback: generic error from the status code alone
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		RetryAfter:  retryAfter,
	}
}
