package lpr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// TestRevokeFlow issues a token, kills it, and proves every later check
// sees it dead.
func TestRevokeFlow(t *testing.T) {
	baseURL, cleanup := setupLPRContainer(t, nil)
	defer cleanup()

	client := lprsdk.NewClient(baseURL)
	issued := issueToken(t, client, defaultScopes(), nil)

	t.Run("ActiveBeforeRevocation", func(t *testing.T) {
		status, err := client.Status(t.Context(), issued.JTI)
		require.NoError(t, err)
		require.Equal(t, lprsdk.StatusActive, status.Status)
		require.Equal(t, testUserID, status.Subject)
		require.Equal(t, 1, status.ScopeCount)
		require.Greater(t, status.RemainingTTLSeconds, int64(0))
	})

	t.Run("Revoke", func(t *testing.T) {
		resp, err := client.Revoke(t.Context(), issued.JTI, "compromised")
		require.NoError(t, err)
		require.True(t, resp.Revoked)
		require.Equal(t, issued.JTI, resp.JTI)
	})

	t.Run("VerifyAfterRevocation", func(t *testing.T) {
		resp, err := client.Verify(t.Context(), lprsdk.VerifyRequest{
			Token: issued.Token,
		})
		require.NoError(t, err)
		require.False(t, resp.Valid)
		require.Equal(t, lprsdk.ErrorCodeTokenRevoked, resp.Error)
	})

	t.Run("StatusAfterRevocation", func(t *testing.T) {
		status, err := client.Status(t.Context(), issued.JTI)
		require.NoError(t, err)
		require.Equal(t, lprsdk.StatusRevoked, status.Status)
	})

	t.Run("RevokeAgainIsNoOpSuccess", func(t *testing.T) {
		resp, err := client.Revoke(t.Context(), issued.JTI, "compromised")
		require.NoError(t, err)
		require.True(t, resp.Revoked)
	})
}

// TestRevokeUnknownJTI revokes a jti nobody issued. The call succeeds and
// leaves a tombstone, so the id stays dead.
func TestRevokeUnknownJTI(t *testing.T) {
	baseURL, cleanup := setupLPRContainer(t, nil)
	defer cleanup()

	client := lprsdk.NewClient(baseURL)
	const unknown = "01K00000000000000000000000"

	resp, err := client.Revoke(t.Context(), unknown, "cleanup")
	require.NoError(t, err)
	require.True(t, resp.Revoked)

	status, err := client.Status(t.Context(), unknown)
	require.NoError(t, err)
	require.Equal(t, lprsdk.StatusRevoked, status.Status)
}

// TestStatusNotFound polls a jti that never existed.
func TestStatusNotFound(t *testing.T) {
	baseURL, cleanup := setupLPRContainer(t, nil)
	defer cleanup()

	client := lprsdk.NewClient(baseURL)

	status, err := client.Status(t.Context(), "01K11111111111111111111111")
	require.NoError(t, err)
	require.Equal(t, lprsdk.StatusNotFound, status.Status)
	require.Zero(t, status.RemainingTTLSeconds)
}
