package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeyringSignWithoutActiveKey(t *testing.T) {
	ring := jwtx.NewKeyring()

	_, err := ring.Sign(testClaims("user-nokey", time.Minute))
	require.ErrorIs(t, err, jwtx.ErrNoActiveKey)
	require.False(t, ring.IsReady())
}

func TestKeyringUseAndAdd(t *testing.T) {
	older, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA, "old-key")
	require.NoError(t, err)
	current, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA, "current-key")
	require.NoError(t, err)

	ring := jwtx.NewKeyring()

	// Rotated-out key stays verifiable, new key signs
	require.NoError(t, ring.Add(older))
	require.NoError(t, ring.Use(current))

	require.True(t, ring.IsReady())
	require.Equal(t, "current-key", ring.Active().KID())
	require.Equal(t, []string{"EdDSA"}, ring.Algs())
	require.Len(t, ring.PublicJWKS().Keys, 2)

	// Tokens from the old key still verify
	oldRing := jwtx.NewKeyring()
	require.NoError(t, oldRing.Use(older))
	oldToken, err := oldRing.Sign(testClaims("user-old", time.Minute))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(ring, jwtx.VerifyOptions{Issuer: exampleIssuer})
	_, err = verifier.Verify(oldToken)
	require.NoError(t, err)
}

func TestKeyringMixedAlgorithms(t *testing.T) {
	ed, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA, "ed-key")
	require.NoError(t, err)
	ec, err := jwtx.GenerateSigner(jwtx.AlgorithmES256, "ec-key")
	require.NoError(t, err)

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Add(ed))
	require.NoError(t, ring.Use(ec))

	require.ElementsMatch(t, []string{"EdDSA", "ES256"}, ring.Algs())
}

func TestKeyringAddJWK(t *testing.T) {
	signer, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA, "remote-key")
	require.NoError(t, err)

	jwk, ok := signer.PublicJWK()
	require.True(t, ok)

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.AddJWK(jwk))

	key, err := ring.Key("remote-key")
	require.NoError(t, err)
	require.NotNil(t, key)

	_, err = ring.Key("nonexistent")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestKeyringResetFromJWKS(t *testing.T) {
	first, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA, "first")
	require.NoError(t, err)
	second, err := jwtx.GenerateSigner(jwtx.AlgorithmES256, "second")
	require.NoError(t, err)

	source := jwtx.NewKeyring()
	require.NoError(t, source.Use(second))

	ring := jwtx.NewKeyring()
	require.NoError(t, ring.Add(first))

	require.NoError(t, ring.ResetFromJWKS(source.PublicJWKS()))

	// Old key is gone, new one resolves
	_, err = ring.Key("first")
	require.ErrorIs(t, err, jwtx.ErrNoKey)

	_, err = ring.Key("second")
	require.NoError(t, err)
	require.Equal(t, []string{"ES256"}, ring.Algs())
}

func TestGenerateSigner(t *testing.T) {
	for _, alg := range []string{jwtx.AlgorithmEdDSA, jwtx.AlgorithmRS256, jwtx.AlgorithmES256} {
		t.Run(alg, func(t *testing.T) {
			signer, err := jwtx.GenerateSigner(alg, "gen-"+alg)
			require.NoError(t, err)
			require.Equal(t, alg, signer.Alg())
			require.NoError(t, signer.Validate())

			_, ok := signer.PublicJWK()
			require.True(t, ok)
		})
	}

	t.Run("HS256 refused", func(t *testing.T) {
		_, err := jwtx.GenerateSigner(jwtx.AlgorithmHS256, "gen-hmac")
		require.Error(t, err)
		require.Contains(t, err.Error(), "derived")
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := jwtx.GenerateSigner("RS512", "gen-unknown")
		require.Error(t, err)
	})
}

func TestNewKeyID(t *testing.T) {
	kid, err := jwtx.NewKeyID()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(kid, "lpr-"))

	other, err := jwtx.NewKeyID()
	require.NoError(t, err)
	require.NotEqual(t, kid, other)
}
