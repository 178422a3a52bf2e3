// Package secrets supplies signing key material to the keyring. The service
// never manages secret lifecycles itself; providers only fetch or mint what
// the deployment configured.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

// SigningKey is one key as a provider hands it over. Asymmetric algorithms
// carry a PEM private key; HS256 carries the secret string the app derives
// its actual key from.
type SigningKey struct {
	KeyID         string `json:"kid"`
	Algorithm     string `json:"alg"`
	PrivateKeyPEM string `json:"private_key_pem,omitempty"`
	Secret        string `json:"secret,omitempty"`

	// Active marks the key used for signing; the rest verify only.
	Active bool `json:"active,omitempty"`
}

func (k SigningKey) Validate() error {
	if k.KeyID == "" {
		return errors.New("secrets: signing key without kid")
	}
	switch k.Algorithm {
	case jwtx.AlgorithmHS256:
		if k.Secret == "" {
			return fmt.Errorf("secrets: key %s: HS256 requires a secret", k.KeyID)
		}
	case jwtx.AlgorithmEdDSA, jwtx.AlgorithmRS256, jwtx.AlgorithmES256:
		if k.PrivateKeyPEM == "" {
			return fmt.Errorf("secrets: key %s: %s requires a PEM private key", k.KeyID, k.Algorithm)
		}
	default:
		return fmt.Errorf("secrets: key %s: unsupported algorithm %q", k.KeyID, k.Algorithm)
	}
	return nil
}

// Provider yields the current signing keys. Implementations: Static (config/
// env PEMs), Generated (ephemeral dev keys), AWS (Secrets Manager).
type Provider interface {
	SigningKeys(ctx context.Context) ([]SigningKey, error)
}

// Static serves keys handed in at construction, typically read from
// environment variables.
type Static struct {
	keys []SigningKey
}

func NewStatic(keys ...SigningKey) (*Static, error) {
	if len(keys) == 0 {
		return nil, errors.New("secrets: static provider needs at least one key")
	}
	for _, k := range keys {
		if err := k.Validate(); err != nil {
			return nil, err
		}
	}
	return &Static{keys: slices.Clone(keys)}, nil
}

func (s *Static) SigningKeys(context.Context) ([]SigningKey, error) {
	return slices.Clone(s.keys), nil
}

// Generated mints a fresh ephemeral key pair at construction. Tokens signed
// with it die with the process, which is exactly right for development.
type Generated struct {
	key SigningKey
}

func NewGenerated(alg string) (*Generated, error) {
	kid, err := jwtx.NewKeyID()
	if err != nil {
		return nil, err
	}
	pemKey, err := jwtx.GenerateKeyPEM(alg)
	if err != nil {
		return nil, err
	}
	return &Generated{key: SigningKey{
		KeyID:         kid,
		Algorithm:     alg,
		PrivateKeyPEM: string(pemKey),
		Active:        true,
	}}, nil
}

func (g *Generated) SigningKeys(context.Context) ([]SigningKey, error) {
	return []SigningKey{g.key}, nil
}
