package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			// Verify token is unique (generate another and compare)
			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"zero size", 0},
		{"negative size", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.Error(t, err)
			require.Empty(t, token)
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("handle-abc")
		b := Fingerprint("handle-abc")
		require.Equal(t, a, b)
	})

	t.Run("distinct inputs produce distinct digests", func(t *testing.T) {
		require.NotEqual(t, Fingerprint("handle-a"), Fingerprint("handle-b"))
	})

	t.Run("output is 43 chars of base64url", func(t *testing.T) {
		fp := Fingerprint("anything")
		require.Len(t, fp, 43)
		require.NotContains(t, fp, "=")
		require.NotContains(t, fp, "+")
		require.NotContains(t, fp, "/")
	})
}
