package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWK_Key_RSA(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwk := NewRSAJWK("test-key-id", "sig", "RS256", &privateKey.PublicKey)

	key, err := jwk.Key()
	require.NoError(t, err)

	rsaPub, ok := key.(*rsa.PublicKey)
	require.True(t, ok, "parsed key should be an RSA public key")
	require.Equal(t, privateKey.PublicKey.N, rsaPub.N)
	require.Equal(t, privateKey.PublicKey.E, rsaPub.E)
}

func TestJWK_Key_Ed25519(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jwk := NewEd25519JWK("test-key-id", "sig", "EdDSA", publicKey)

	key, err := jwk.Key()
	require.NoError(t, err)

	edPub, ok := key.(ed25519.PublicKey)
	require.True(t, ok, "parsed key should be an Ed25519 public key")
	require.Equal(t, publicKey, edPub)
}

func TestJWK_Key_ES256(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	jwk := NewES256JWK("test-key-id", "sig", "ES256", &privateKey.PublicKey)

	// Coordinates are always padded to the P-256 field size
	require.Len(t, mustDecode(t, jwk.X), 32)
	require.Len(t, mustDecode(t, jwk.Y), 32)

	key, err := jwk.Key()
	require.NoError(t, err)

	ecPub, ok := key.(*ecdsa.PublicKey)
	require.True(t, ok, "parsed key should be an ECDSA public key")
	require.Equal(t, privateKey.PublicKey.X, ecPub.X)
	require.Equal(t, privateKey.PublicKey.Y, ecPub.Y)
}

func TestJWK_PEM(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jwk := NewEd25519JWK("test-key-id", "sig", "EdDSA", publicKey)

	pemStr, err := jwk.PEM()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(pemStr), "-----END PUBLIC KEY-----"))

	// Parse the PEM back to verify it round-trips
	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block, "PEM block should be valid")
	require.Equal(t, "PUBLIC KEY", block.Type)

	parsedKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	require.Equal(t, publicKey, parsedKey.(ed25519.PublicKey))
}

func TestJWK_Key_UnsupportedKeyType(t *testing.T) {
	jwk := JWK{
		Kty: "UNSUPPORTED",
		Kid: "test-key",
	}

	_, err := jwk.Key()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported kty")
}

func TestJWK_Key_InvalidBase64(t *testing.T) {
	jwk := JWK{
		Kty: "RSA",
		Kid: "test-key",
		N:   "!!!invalid-base64!!!",
		E:   "AQAB",
	}

	_, err := jwk.Key()
	require.Error(t, err)
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}
