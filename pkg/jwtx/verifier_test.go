package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newVerifyFixture(t *testing.T) (*jwtx.Keyring, jwtx.Signer) {
	t.Helper()
	signer, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA, "verify-key")
	require.NoError(t, err)

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Use(signer))
	return ring, signer
}

func TestVerifyRequiresTokenPrefix(t *testing.T) {
	ring, _ := newVerifyFixture(t)
	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})

	token, err := ring.Sign(testClaims("user-prefix", time.Minute))
	require.NoError(t, err)

	t.Run("prefixed token verifies", func(t *testing.T) {
		_, err := verifier.Verify(token)
		require.NoError(t, err)
	})

	t.Run("bare JWT is rejected", func(t *testing.T) {
		bare := strings.TrimPrefix(token, jwtx.TokenPrefix)
		_, err := verifier.Verify(bare)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("empty string is rejected", func(t *testing.T) {
		_, err := verifier.Verify("")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("prefix with garbage is rejected", func(t *testing.T) {
		_, err := verifier.Verify(jwtx.TokenPrefix + "not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestVerifyExpiredToken(t *testing.T) {
	ring, signer := newVerifyFixture(t)
	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})

	// Build claims that expired two minutes ago. NewClaims clamps TTLs,
	// so write the registered claims by hand.
	now := time.Now().UTC()
	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    exampleIssuer,
			Subject:   "user-expired",
			IssuedAt:  jwt.NewNumericDate(now.Add(-10 * time.Minute)),
			NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Minute)),
			ID:        "jti-expired",
		},
	}

	raw, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(jwtx.TokenPrefix + raw)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyNotYetValidToken(t *testing.T) {
	ring, signer := newVerifyFixture(t)
	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})

	now := time.Now().UTC()
	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    exampleIssuer,
			Subject:   "user-future",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(5 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			ID:        "jti-future",
		},
	}

	raw, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(jwtx.TokenPrefix + raw)
	require.ErrorIs(t, err, jwtx.ErrNotYetValid)
}

func TestVerifyLeewayToleratesSkew(t *testing.T) {
	ring, signer := newVerifyFixture(t)

	now := time.Now().UTC()
	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    exampleIssuer,
			Subject:   "user-skew",
			IssuedAt:  jwt.NewNumericDate(now.Add(-10 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ID:        "jti-skew",
		},
	}

	raw, err := signer.Sign(claims)
	require.NoError(t, err)
	token := jwtx.TokenPrefix + raw

	strict := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})
	_, err = strict.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	relaxed := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer, Leeway: 30 * time.Second})
	_, err = relaxed.Verify(token)
	require.NoError(t, err)
}

func TestVerifyWithEmptyKeyring(t *testing.T) {
	ring, _ := newVerifyFixture(t)
	token, err := ring.Sign(testClaims("user-empty", time.Minute))
	require.NoError(t, err)

	empty := jwtx.NewKeyring()
	verifier := jwtx.NewVerifier(empty, jwtx.VerifyOptions{Issuer: exampleIssuer})

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestVerifyRejectsForeignAlgorithm(t *testing.T) {
	// Token signed with RS256 presented to a ring that only holds an
	// EdDSA key.
	rsaSigner, err := jwtx.GenerateSigner(jwtx.AlgorithmRS256, "foreign-key")
	require.NoError(t, err)

	signRing := jwtx.NewKeyring()
	require.NoError(t, signRing.Use(rsaSigner))
	token, err := signRing.Sign(testClaims("user-foreign", time.Minute))
	require.NoError(t, err)

	ring, _ := newVerifyFixture(t)
	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})

	_, err = verifier.Verify(token)
	require.Error(t, err)
}
