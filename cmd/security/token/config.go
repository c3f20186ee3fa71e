package token

import (
	"os"
	"strings"
	"time"
)

const (
	// SecretEnvKey is the env var name for the signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "WAYFARE_JWT_SECRET"

	// MinSecretBytes is the enforced minimum secret length for HMAC-SHA256.
	MinSecretBytes = 32
)

// Config defines runtime configuration for bearer tokens.
type Config struct {
	// Issuer is the value set in the "iss" claim.
	Issuer string

	// TTL is the token lifetime. Fixed at issue time; there is no rotation.
	TTL time.Duration

	// Secret is the HMAC signing key.
	Secret []byte

	// RequireStrongSecret rejects secrets shorter than MinSecretBytes.
	// Dev setups may run with a short secret; production must not.
	RequireStrongSecret bool
}

// DefaultConfig returns defaults suitable for development.
// The secret must still be supplied via env or set explicitly.
func DefaultConfig() Config {
	return Config{
		Issuer: "wayfare",
		TTL:    7 * 24 * time.Hour,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//
//   - WAYFARE_JWT_SECRET
//
// Optional:
//
//   - WAYFARE_TOKEN_ISSUER
//   - WAYFARE_TOKEN_TTL (Go duration string)
//   - WAYFARE_REQUIRE_STRONG_SECRET (true/false)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("WAYFARE_TOKEN_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	if v := strings.TrimSpace(os.Getenv("WAYFARE_TOKEN_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := strings.TrimSpace(os.Getenv("WAYFARE_REQUIRE_STRONG_SECRET")); v != "" {
		cfg.RequireStrongSecret = strings.EqualFold(v, "true") || v == "1"
	}

	secret := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if secret == "" {
		return Config{}, ErrSecretMissing
	}
	if cfg.RequireStrongSecret && len(secret) < MinSecretBytes {
		return Config{}, ErrSecretTooShort
	}
	cfg.Secret = []byte(secret)

	return cfg, nil
}
