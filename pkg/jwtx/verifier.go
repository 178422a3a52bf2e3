package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a delegation token and gives you back the claims if
// it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain (claims.aud). Empty means "don't care".
	Audience []string

	// Leeway allows small clock skew when validating exp/nbf/iat.
	// Because time sync is never perfect.
	Leeway time.Duration
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer         = errors.New("jwtx: issuer mismatch")
	ErrAudience       = errors.New("jwtx: audience mismatch")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrNotYetValid    = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim   = errors.New("jwtx: invalid claims")
	ErrConsentMissing = errors.New("jwtx: consent not granted")
)

// TokenVerifier validates tokens against a Keyring, accepting any
// algorithm the ring holds a key for.
type TokenVerifier struct {
	ring *Keyring
	opts VerifyOptions
}

// NewVerifier creates a verifier backed by the given key ring.
func NewVerifier(ring *Keyring, opts VerifyOptions) *TokenVerifier {
	return &TokenVerifier{ring: ring, opts: opts}
}

// Verify checks the token prefix, signature and registered claims, then
// returns the parsed Claims. Failures come back as the package sentinel
// errors so callers can map them onto their own taxonomy.
func (v *TokenVerifier) Verify(tokenStr string) (Claims, error) {
	// Every token we mint carries the prefix. Anything without it was
	// never ours.
	raw, found := strings.CutPrefix(tokenStr, TokenPrefix)
	if !found || raw == "" {
		return Claims{}, ErrMalformed
	}

	algs := v.ring.Algs()
	if len(algs) == 0 {
		return Claims{}, ErrNoKey
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(algs),
		jwt.WithLeeway(v.opts.Leeway),
	)

	token, err := parser.ParseWithClaims(raw, &Claims{}, v.keyfunc)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	// Now check all the claim requirements
	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.opts.Leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// keyfunc resolves the verification key by kid and makes sure the key
// type matches the algorithm in the token header. Without the type check
// a stolen public key could be replayed as an HMAC secret.
func (v *TokenVerifier) keyfunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrUnknownKID
	}

	key, err := v.ring.Key(kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}

	ok := false
	switch t.Method.(type) {
	case *jwt.SigningMethodEd25519:
		_, ok = key.(ed25519.PublicKey)
	case *jwt.SigningMethodRSA:
		_, ok = key.(*rsa.PublicKey)
	case *jwt.SigningMethodECDSA:
		_, ok = key.(*ecdsa.PublicKey)
	case *jwt.SigningMethodHMAC:
		_, ok = key.([]byte)
	}
	if !ok {
		return nil, ErrAlgMismatch
	}

	return key, nil
}

// mapParseError folds the jwt library's error chain into our sentinels.
// Keyfunc errors surface first since the library wraps them generically.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	}
	return fmt.Errorf("jwtx: parse or verify: %w", err)
}
