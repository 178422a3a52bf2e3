package jwtx_test

import (
	"testing"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestHS256SignAndVerify(t *testing.T) {
	// The HS256 secret is derived from the service master secret, the
	// same way the key bootstrap does it.
	secret, err := cryptox.DeriveKey([]byte("master-secret-for-tests"), "lpr/hs256/dev-key", 32)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerHS256("dev-key", secret)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	require.Equal(t, "HS256", signer.Alg())

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))

	claims := testClaims("user-hmac", 5*time.Minute)
	token, err := ring.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{
		Issuer:   exampleIssuer,
		Audience: []string{"reports-api"},
	})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.DFP, parsed.DFP)
}

func TestHS256KeyNeverPublished(t *testing.T) {
	secret, err := cryptox.DeriveKey([]byte("master-secret-for-tests"), "lpr/hs256/dev-key", 32)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerHS256("dev-key", secret)
	require.NoError(t, err)

	_, ok := signer.PublicJWK()
	require.False(t, ok, "symmetric keys must not have a public JWK")

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))
	require.Empty(t, ring.PublicJWKS().Keys, "symmetric keys must not appear in the published key set")
}

func TestHS256RejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256("short", []byte("too-short"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "32 bytes")
}

func TestHS256VerifyFailsForDifferentSecret(t *testing.T) {
	secretA, err := cryptox.DeriveKey([]byte("master-a"), "lpr/hs256/key", 32)
	require.NoError(t, err)
	secretB, err := cryptox.DeriveKey([]byte("master-b"), "lpr/hs256/key", 32)
	require.NoError(t, err)

	signerA, err := jwtx.NewSignerHS256("key", secretA)
	require.NoError(t, err)
	signerB, err := jwtx.NewSignerHS256("key", secretB)
	require.NoError(t, err)

	signRing := jwtx.NewKeyring()
	require.NoError(t, signRing.Use(signerA))
	token, err := signRing.Sign(testClaims("user-wrong-secret", time.Minute))
	require.NoError(t, err)

	verifyRing := jwtx.NewKeyring()
	require.NoError(t, verifyRing.Use(signerB))

	verifier := jwtx.NewVerifier(verifyRing, jwtx.VerifyOptions{Issuer: exampleIssuer})

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}
