package jwtx_test

import (
	"testing"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestScopeNormalize(t *testing.T) {
	s := jwtx.Scope{Method: " get ", URLPattern: "  /api/reports/monthly "}
	n := s.Normalize()

	require.Equal(t, "GET", n.Method)
	require.Equal(t, "/api/reports/monthly", n.URLPattern)

	// Original is untouched, Normalize works on a copy
	require.Equal(t, " get ", s.Method)
}

func TestScopeValidate(t *testing.T) {
	valid := []jwtx.Scope{
		{Method: "GET", URLPattern: "/api/reports"},
		{Method: "post", URLPattern: "/api/orders"},
		{Method: "*", URLPattern: "/"},
		{Method: "", URLPattern: "/api/reports"}, // empty method normalizes to "*"
		{Method: "DELETE", URLPattern: "/api/items/temp"},
	}
	for _, s := range valid {
		require.NoError(t, s.Validate(), "scope %q should be valid", s.String())
	}

	invalid := []jwtx.Scope{
		{Method: "FETCH", URLPattern: "/api/reports"},
		{Method: "GET", URLPattern: "api/reports"},
		{Method: "GET", URLPattern: ""},
	}
	for _, s := range invalid {
		require.ErrorIs(t, s.Validate(), jwtx.ErrInvalidScope, "scope %q should be invalid", s.String())
	}
}

func TestScopeString(t *testing.T) {
	s := jwtx.Scope{Method: "GET", URLPattern: "/api/reports"}
	require.Equal(t, "GET /api/reports", s.String())
}
