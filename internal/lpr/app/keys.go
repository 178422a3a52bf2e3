package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/secrets"
	"github.com/mochizuki1122m/shodo-lpr/pkg/cryptox"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
)

// InitSigningKeys builds the keyring from the configured secrets provider.
//
// Providers:
//   - "static": key material from LPR_SIGNING_KEY_FILE (PEM) or, for
//     HS256, derived from LPR_MASTER_SECRET. Tokens survive restarts.
//   - "generated": a fresh ephemeral key pair on every start. All
//     outstanding tokens die with the process; right for development.
//   - "aws": keys fetched from AWS Secrets Manager.
//
// Supported algorithms: EdDSA, RS256, ES256, HS256 (non-prod only).
func InitSigningKeys(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.Keyring, error) {
	provider, err := newSecretsProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	keys, err := provider.SigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch signing keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, errors.New("secrets provider returned no signing keys")
	}

	ring := jwtx.NewKeyring()
	for _, k := range keys {
		signer, err := signerFromKey(cfg, k)
		if err != nil {
			return nil, err
		}
		if k.Active {
			err = ring.Use(signer)
		} else {
			err = ring.Add(signer)
		}
		if err != nil {
			return nil, fmt.Errorf("load signing key %s: %w", k.KeyID, err)
		}
	}

	// Providers that don't flag an active key sign with the first one.
	if !ring.IsReady() {
		signer, err := signerFromKey(cfg, keys[0])
		if err != nil {
			return nil, err
		}
		if err := ring.Use(signer); err != nil {
			return nil, fmt.Errorf("activate signing key %s: %w", keys[0].KeyID, err)
		}
	}

	logger.Info("signing keys loaded",
		"provider", cfg.SecretsProvider,
		"algorithm", cfg.SigningAlg,
		"num_keys", len(keys),
		"issuer", cfg.Issuer,
	)
	if cfg.SecretsProvider == "generated" {
		logger.Warn("ephemeral signing keys in use, all previously issued tokens are now invalid")
	}

	return ring, nil
}

func newSecretsProvider(ctx context.Context, cfg Config) (secrets.Provider, error) {
	switch cfg.SecretsProvider {
	case "static":
		return newStaticProvider(cfg)
	case "generated", "":
		return secrets.NewGenerated(cfg.SigningAlg)
	case "aws":
		if cfg.AWSSecretID == "" {
			return nil, errors.New("aws secrets provider needs LPR_AWS_SECRET_ID")
		}
		return secrets.NewAWS(ctx, cfg.AWSSecretID, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown secrets provider %q", cfg.SecretsProvider)
	}
}

func newStaticProvider(cfg Config) (secrets.Provider, error) {
	kid := cfg.SigningKeyID
	if kid == "" {
		var err error
		if kid, err = jwtx.NewKeyID(); err != nil {
			return nil, err
		}
	}

	key := secrets.SigningKey{
		KeyID:     kid,
		Algorithm: cfg.SigningAlg,
		Active:    true,
	}

	if cfg.SigningAlg == jwtx.AlgorithmHS256 {
		key.Secret = cfg.MasterSecret
		if key.Secret == "" {
			return nil, errors.New("static HS256 provider needs LPR_MASTER_SECRET")
		}
		return secrets.NewStatic(key)
	}

	if cfg.SigningKeyFile == "" {
		return nil, errors.New("static provider needs LPR_SIGNING_KEY_FILE")
	}
	pemBytes, err := os.ReadFile(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read signing key file: %w", err)
	}
	key.PrivateKeyPEM = string(pemBytes)
	return secrets.NewStatic(key)
}

// signerFromKey turns provider key material into a signer. HS256 keys go
// through HKDF so the raw master secret never signs anything directly,
// and symmetric signing is refused in prod outright.
func signerFromKey(cfg Config, k secrets.SigningKey) (jwtx.Signer, error) {
	if k.Algorithm == jwtx.AlgorithmHS256 {
		if cfg.Env == "prod" {
			return nil, errors.New("HS256 signing keys are not allowed in prod")
		}
		material, err := cryptox.DeriveKey([]byte(k.Secret), "lpr/hs256/"+k.KeyID, 32)
		if err != nil {
			return nil, fmt.Errorf("derive HS256 key %s: %w", k.KeyID, err)
		}
		return jwtx.NewSignerForAlg(k.Algorithm, k.KeyID, material)
	}
	return jwtx.NewSignerForAlg(k.Algorithm, k.KeyID, []byte(k.PrivateKeyPEM))
}
