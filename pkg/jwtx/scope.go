package jwtx

import (
	"errors"
	"strings"
)

// Scope is a single delegated operation: an HTTP method (or "*" for any)
// plus a URL prefix pattern, optionally narrowed by constraints the
// target service interprets itself.
type Scope struct {
	Method      string            `json:"method"`
	URLPattern  string            `json:"url_pattern"`
	Constraints map[string]string `json:"constraints,omitempty"`
}

// Wildcard matches any HTTP method in a scope.
const Wildcard = "*"

var ErrInvalidScope = errors.New("jwtx: invalid scope")

// Normalize upper-cases the method and trims stray whitespace so scope
// comparison is byte-equal everywhere. An empty method means any method.
func (s Scope) Normalize() Scope {
	s.Method = strings.ToUpper(strings.TrimSpace(s.Method))
	if s.Method == "" {
		s.Method = Wildcard
	}
	s.URLPattern = strings.TrimSpace(s.URLPattern)
	return s
}

// Validate rejects scopes that could never match a real request.
func (s Scope) Validate() error {
	n := s.Normalize()

	switch n.Method {
	case Wildcard, "GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS":
	default:
		return ErrInvalidScope
	}

	if n.URLPattern == "" || !strings.HasPrefix(n.URLPattern, "/") {
		return ErrInvalidScope
	}

	return nil
}

// String renders the scope for logs and audit records, e.g. "GET /api/reports".
func (s Scope) String() string {
	return s.Method + " " + s.URLPattern
}
