package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256SecretSize is the smallest secret we accept for HS256, matching
// the SHA-256 output size per RFC 7518 section 3.2.
const MinHS256SecretSize = 32

// HS256Signer implements the Signer interface using HMAC SHA-256 with a
// shared secret. There is no public half, so tokens signed this way can
// only be verified inside the same trust boundary and the kid never
// shows up in the published key set.
type HS256Signer struct {
	kid    string
	secret []byte
	alg    string
}

// newHS256Signer wraps a shared secret, typically derived from the
// service master secret with HKDF.
func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHS256SecretSize {
		return nil, errors.New("jwtx: HS256 secret below 32 bytes")
	}

	// Copy so a caller reusing the buffer can't change the key under us.
	owned := make([]byte, len(secret))
	copy(owned, secret)

	return &HS256Signer{
		kid:    kid,
		secret: owned,
		alg:    jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }
func (s *HS256Signer) KID() string { return s.kid }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}

// PublicJWK reports false, the shared secret is never published.
func (s *HS256Signer) PublicJWK() (JWK, bool) {
	return JWK{}, false
}

// VerificationKey returns the shared secret for signature checks.
func (s *HS256Signer) VerificationKey() any { return s.secret }

// Validate does a quick sanity check on the secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHS256SecretSize {
		return errors.New("jwtx: HS256 secret below 32 bytes")
	}
	return nil
}
