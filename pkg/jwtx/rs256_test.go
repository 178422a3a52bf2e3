package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRS256SignAndVerify(t *testing.T) {
	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256("test-key-rsa", pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	require.Equal(t, "RS256", signer.Alg())

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))

	claims := testClaims("user-rsa", 5*time.Minute)
	token, err := ring.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{
		Issuer:   exampleIssuer,
		Audience: []string{"reports-api"},
	})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.ElementsMatch(t, claims.Scopes, parsed.Scopes)
}

func TestRS256VerifyFailsForTamperedToken(t *testing.T) {
	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256("k-rsa", pemKey)
	require.NoError(t, err)

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))

	token, err := ring.Sign(testClaims("user-tamper", time.Minute))
	require.NoError(t, err)

	// Flip a character in the payload segment
	parts := strings.Split(strings.TrimPrefix(token, jwtx.TokenPrefix), ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	if payload[10] == 'A' {
		payload[10] = 'B'
	} else {
		payload[10] = 'A'
	}
	tampered := jwtx.TokenPrefix + parts[0] + "." + string(payload) + "." + parts[2]

	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})

	_, err = verifier.Verify(tampered)
	require.Error(t, err)
}

func TestRS256VerifyFailsForWrongAudience(t *testing.T) {
	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256("k-aud", pemKey)
	require.NoError(t, err)

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))

	token, err := ring.Sign(testClaims("user-aud", time.Minute))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{
		Issuer:   exampleIssuer,
		Audience: []string{"billing-api"},
	})

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrAudience)
}
