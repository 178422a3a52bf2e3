package jwtx

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
)

// Supported JWT signing algorithms
const (
	AlgorithmEdDSA = "EdDSA"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
	AlgorithmHS256 = "HS256"
)

var (
	ErrNoKey       = errors.New("jwtx: key not found")
	ErrNoActiveKey = errors.New("jwtx: no active signing key")
)

// Keyring holds the active signing key plus every key still accepted for
// verification. It's thread-safe, so the issuer (signing and JWKS
// publishing) and the enforcement layer (verification) can share one
// instance without causing chaos (tm).
type Keyring struct {
	mu     sync.RWMutex
	active Signer
	keys   map[string]any // kid: *rsa.PublicKey | ed25519.PublicKey | []byte | etc.
	algs   []string
	jwks   JWKS
}

// NewKeyring returns an empty Keyring.
func NewKeyring() *Keyring {
	return &Keyring{
		keys: make(map[string]any),
	}
}

// Use registers a signer and makes it the one that mints new tokens.
func (k *Keyring) Use(s Signer) error {
	if err := k.Add(s); err != nil {
		return err
	}

	k.mu.Lock()
	k.active = s
	k.mu.Unlock()
	return nil
}

// Add registers a signer for verification only. Rotated-out keys stay in
// the ring this way until their last tokens expire.
func (k *Keyring) Add(s Signer) error {
	if err := s.Validate(); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys[s.KID()] = s.VerificationKey()
	if !slices.Contains(k.algs, s.Alg()) {
		k.algs = append(k.algs, s.Alg())
	}
	if j, ok := s.PublicJWK(); ok {
		k.jwks.Keys = append(k.jwks.Keys, j)
	}
	return nil
}

// AddJWK registers a published key for verification. Verify-only
// deployments use this after fetching the issuer's key set.
func (k *Keyring) AddJWK(j JWK) error {
	key, err := j.Key()
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys[j.Kid] = key
	if j.Alg != "" && !slices.Contains(k.algs, j.Alg) {
		k.algs = append(k.algs, j.Alg)
	}
	k.jwks.Keys = append(k.jwks.Keys, j)
	return nil
}

// Key returns the verification key for the given kid.
func (k *Keyring) Key(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if key, ok := k.keys[kid]; ok {
		return key, nil
	}
	return nil, ErrNoKey
}

// Sign mints a prefixed token with the active signing key.
func (k *Keyring) Sign(claims Claims) (string, error) {
	k.mu.RLock()
	s := k.active
	k.mu.RUnlock()

	if s == nil {
		return "", ErrNoActiveKey
	}

	raw, err := s.Sign(claims)
	if err != nil {
		return "", err
	}
	return TokenPrefix + raw, nil
}

// Active returns the current signing key, or nil before Use is called.
func (k *Keyring) Active() Signer {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active
}

// Algs returns the algorithms the ring holds keys for.
func (k *Keyring) Algs() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return slices.Clone(k.algs)
}

// PublicJWKS returns a snapshot of the publishable keys for HTTP serving.
// Symmetric keys are never included.
func (k *Keyring) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: slices.Clone(k.jwks.Keys)}
}

// IsReady reports whether the ring can both sign and verify.
func (k *Keyring) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active != nil && len(k.keys) > 0
}

// ResetFromJWKS replaces all verification keys from a fetched key set.
// The active signer, if any, is left alone.
func (k *Keyring) ResetFromJWKS(jwks JWKS) error {
	newKeys := make(map[string]any, len(jwks.Keys))
	var algs []string
	for _, j := range jwks.Keys {
		key, err := j.Key()
		if err != nil {
			return err
		}
		newKeys[j.Kid] = key
		if j.Alg != "" && !slices.Contains(algs, j.Alg) {
			algs = append(algs, j.Alg)
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys = newKeys
	k.algs = algs
	k.jwks = jwks
	return nil
}

// NewSignerForAlg builds a signer from stored key material. Asymmetric
// algorithms expect PEM bytes, HS256 expects the raw shared secret.
func NewSignerForAlg(alg, kid string, keyMaterial []byte) (Signer, error) {
	switch alg {
	case AlgorithmEdDSA:
		return NewSignerEdDSA(kid, keyMaterial)
	case AlgorithmRS256:
		return NewSignerRS256(kid, keyMaterial)
	case AlgorithmES256:
		return NewSignerES256(kid, keyMaterial)
	case AlgorithmHS256:
		return NewSignerHS256(kid, keyMaterial)
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
}

// GenerateKeyPEM creates fresh PEM private key material for alg.
//
// HS256 is refused here: its secret is derived from the service master
// secret, never generated ad hoc.
func GenerateKeyPEM(alg string) ([]byte, error) {
	var pemBytes []byte
	var err error

	switch alg {
	case AlgorithmEdDSA:
		pemBytes, err = cryptox.GenerateEd25519Key()
	case AlgorithmRS256:
		pemBytes, err = cryptox.GenerateRSAKey(2048)
	case AlgorithmES256:
		pemBytes, err = cryptox.GenerateES256Key()
	case AlgorithmHS256:
		return nil, errors.New("jwtx: HS256 secrets are derived, not generated")
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate %s key: %w", alg, err)
	}
	return pemBytes, nil
}

// GenerateSigner creates a signer with a freshly generated key. The key
// only lives in memory, which means every outstanding token dies with
// the process. Fine for development, use stored PEMs everywhere else.
func GenerateSigner(alg, kid string) (Signer, error) {
	pemBytes, err := GenerateKeyPEM(alg)
	if err != nil {
		return nil, err
	}
	return NewSignerForAlg(alg, kid, pemBytes)
}

// NewKeyID creates a random key identifier, e.g. "lpr-hay3NTExCqTY8C276ZbcFA".
func NewKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: generate key ID: %w", err)
	}
	return "lpr-" + token, nil
}
