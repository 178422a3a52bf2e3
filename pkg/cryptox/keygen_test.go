package cryptox

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Key(t *testing.T) {
	pemKey, err := GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemKey)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	_, ok := priv.(ed25519.PrivateKey)
	require.True(t, ok, "expected an Ed25519 private key")
}

func TestGenerateRSAKey(t *testing.T) {
	t.Run("rejects weak sizes", func(t *testing.T) {
		_, err := GenerateRSAKey(1024)
		require.Error(t, err)
	})

	t.Run("produces parseable PKCS1", func(t *testing.T) {
		pemKey, err := GenerateRSAKey(2048)
		require.NoError(t, err)

		block, _ := pem.Decode(pemKey)
		require.NotNil(t, block)
		require.Equal(t, "RSA PRIVATE KEY", block.Type)

		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		require.NoError(t, err)
		require.Equal(t, 2048, key.N.BitLen())
	})
}

func TestGenerateES256Key(t *testing.T) {
	pemKey, err := GenerateES256Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemKey)
	require.NotNil(t, block)

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	ec, ok := priv.(*ecdsa.PrivateKey)
	require.True(t, ok, "expected an ECDSA private key")
	require.Equal(t, "P-256", ec.Curve.Params().Name)
}
