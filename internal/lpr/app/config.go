package app

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Everything comes from
// environment variables; a local .env file is honored in development.
type Config struct {
	// Issuer is the iss claim stamped into every token.
	Issuer string `env:"LPR_ISSUER" envDefault:"shodo-lpr"`

	// Service is the audience the enforcement gateway pins. Empty leaves
	// the gateway unpinned, which only makes sense in development.
	Service string `env:"LPR_SERVICE"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// TokenTTL applies to issue requests that don't ask for a lifetime.
	// The one-hour ceiling applies regardless of this value.
	TokenTTL time.Duration `env:"LPR_TOKEN_TTL" envDefault:"15m"`

	// SecretsProvider selects where signing keys come from: static
	// (PEM file / master secret), generated (ephemeral dev keys), or
	// aws (Secrets Manager).
	SecretsProvider string `env:"LPR_SECRETS_PROVIDER" envDefault:"generated"`
	SigningAlg      string `env:"LPR_SIGNING_ALG" envDefault:"EdDSA"`
	SigningKeyID    string `env:"LPR_KEY_ID"`
	SigningKeyFile  string `env:"LPR_SIGNING_KEY_FILE"`

	// MasterSecret feeds HKDF for HS256 signing keys. Symmetric signing
	// is refused outright when Env is prod.
	MasterSecret string `env:"LPR_MASTER_SECRET"`

	AWSSecretID string `env:"LPR_AWS_SECRET_ID"`
	AWSRegion   string `env:"AWS_REGION"`

	// RedisURL enables the shared revocation/rate-limit backend. Empty
	// runs single-node on the in-process store.
	RedisURL string `env:"LPR_REDIS_URL"`

	// FailOpen picks what happens when Redis is down: true serves
	// degraded from the in-process fallback, false denies with 503.
	FailOpen bool `env:"LPR_FAIL_OPEN" envDefault:"true"`

	// DeviceStrict turns fingerprint mismatches from logged warnings
	// into hard denials.
	DeviceStrict bool `env:"LPR_DEVICE_STRICT" envDefault:"false"`

	SessionGrantToken string        `env:"LPR_SESSION_GRANT_TOKEN"`
	SessionTTL        time.Duration `env:"LPR_SESSION_TTL" envDefault:"2m"`

	// UpstreamURL is what the enforcement gateway forwards to. Empty
	// serves the built-in echo endpoint instead.
	UpstreamURL string        `env:"LPR_UPSTREAM_URL"`
	JitterMax   time.Duration `env:"LPR_JITTER_MAX" envDefault:"150ms"`

	// PolicyFile optionally tunes enforcement (exempt paths, redacted
	// fields) from YAML.
	PolicyFile string `env:"LPR_POLICY_FILE"`

	AuditDBFile       string        `env:"LPR_AUDIT_DB_FILE"`
	AuditAMQPURL      string        `env:"LPR_AUDIT_AMQP_URL"`
	AuditAMQPExchange string        `env:"LPR_AUDIT_AMQP_EXCHANGE" envDefault:"lpr.audit"`
	AuditRetention    time.Duration `env:"LPR_AUDIT_RETENTION" envDefault:"720h"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"10m"`

	// Policy is filled from PolicyFile by LoadConfig.
	Policy EnforcementPolicy `env:"-"`
}

// EnforcementPolicy tunes the gateway pipeline. Zero values mean the
// built-in defaults.
type EnforcementPolicy struct {
	// ExemptPaths pass the gateway without a token. Prefix match.
	ExemptPaths []string `yaml:"exempt_paths"`

	// RedactFields are masked in JSON responses on enforced routes.
	// Absent means the built-in default set; an explicit empty list
	// disables redaction.
	RedactFields []string `yaml:"redact_fields"`
}

// LoadConfig reads the environment (plus a .env file when present) into
// a Config and folds in the YAML policy file when one is configured.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.PolicyFile != "" {
		raw, err := os.ReadFile(cfg.PolicyFile)
		if err != nil {
			return Config{}, fmt.Errorf("read policy file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg.Policy); err != nil {
			return Config{}, fmt.Errorf("parse policy file %s: %w", cfg.PolicyFile, err)
		}
	}

	return cfg, nil
}
