package jwtx_test

import (
	"testing"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// testClaims builds a representative set of delegation claims for the
// signing round-trip tests.
func testClaims(subject string, ttl time.Duration) jwtx.Claims {
	now := time.Now().UTC()
	return jwtx.NewClaims(
		"jti-"+subject,
		subject,
		"reports-api",
		[]jwtx.Scope{
			{Method: "GET", URLPattern: "/api/reports"},
			{Method: "POST", URLPattern: "/api/reports/export"},
		},
		[]string{"https://app.example.com"},
		jwtx.Policy{MaxRequests: 50, TimeWindowSeconds: 60, BurstLimit: 5},
		"device-hash-abc",
		"cid-"+subject,
		&jwtx.Consent{Granted: true, Timestamp: now, Purpose: "scheduled export"},
		ttl,
		exampleIssuer,
		now,
	)
}

func TestEdDSASignAndVerify(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	kid := "test-key-eddsa"

	// Create signer
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, kid, signer.KID())

	// Register in a ring and mint a token
	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))

	claims := testClaims("user-456", 5*time.Minute)
	token, err := ring.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Minted tokens always carry the wire prefix
	require.True(t, len(token) > len(jwtx.TokenPrefix))
	require.Equal(t, jwtx.TokenPrefix, token[:len(jwtx.TokenPrefix)])

	// The published key set has the matching OKP key
	jwks := ring.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.NotEmpty(t, jwks.Keys[0].X)

	// Verify and compare claims
	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{
		Issuer:   exampleIssuer,
		Audience: []string{"reports-api"},
	})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)

	require.Equal(t, claims.Issuer, parsed.Issuer)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.ID, parsed.ID)
	require.ElementsMatch(t, claims.Audience, parsed.Audience)
	require.ElementsMatch(t, claims.Scopes, parsed.Scopes)
	require.Equal(t, claims.Policy, parsed.Policy)
	require.Equal(t, claims.DFP, parsed.DFP)
	require.Equal(t, claims.CID, parsed.CID)
	require.NotNil(t, parsed.Consent)
	require.True(t, parsed.Consent.Granted)
}

func TestEdDSAVerifyFailsForWrongIssuer(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))

	token, err := ring.Sign(testClaims("user-789", time.Minute))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: "wrong-issuer"})

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestEdDSAVerifyFailsForUnknownKey(t *testing.T) {
	pemKey1, _ := cryptox.GenerateEd25519Key()
	signer1, _ := jwtx.NewSignerEdDSA("key1", pemKey1)

	pemKey2, _ := cryptox.GenerateEd25519Key()
	signer2, _ := jwtx.NewSignerEdDSA("key2", pemKey2)

	// Token signed with key1
	signRing := jwtx.NewKeyring()
	require.NoError(t, signRing.Use(signer1))
	token, err := signRing.Sign(testClaims("user-unknown", time.Minute))
	require.NoError(t, err)

	// Verifying ring only holds key2
	verifyRing := jwtx.NewKeyring()
	require.NoError(t, verifyRing.Use(signer2))

	verifier := jwtx.NewVerifier(verifyRing, jwtx.VerifyOptions{Issuer: exampleIssuer})

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestEdDSAValidateFailsForInvalidKey(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("test", []byte("not-a-pem-key"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid PEM")
}
