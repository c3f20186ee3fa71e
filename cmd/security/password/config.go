package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Policy controls password validation boundaries.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	// Cost is the bcrypt work factor.
	Cost   int
	Policy Policy
}

// DefaultConfig returns the baseline configuration: bcrypt cost 10,
// minimum length 6.
//
// MaxLength is capped at 72 because bcrypt silently truncates longer inputs;
// rejecting instead of truncating keeps "verify(hash(p), p)" honest.
func DefaultConfig() Config {
	return Config{
		Cost: 10,
		Policy: Policy{
			MinLength: 6,
			MaxLength: 72,
		},
	}
}

// FromEnv loads config from environment variables on top of defaults.
//
// Env surface:
//
//   - WAYFARE_BCRYPT_COST
//   - WAYFARE_PASSWORD_MIN_LEN
//   - WAYFARE_PASSWORD_MAX_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("WAYFARE_BCRYPT_COST"); ok {
		n, err := atoiBounded(v, bcrypt.MinCost, bcrypt.MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("WAYFARE_BCRYPT_COST: %w", err)
		}
		cfg.Cost = n
	}

	if v, ok := os.LookupEnv("WAYFARE_PASSWORD_MIN_LEN"); ok {
		n, err := atoiBounded(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("WAYFARE_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	if v, ok := os.LookupEnv("WAYFARE_PASSWORD_MAX_LEN"); ok {
		n, err := atoiBounded(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("WAYFARE_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf("WAYFARE_PASSWORD_MIN_LEN exceeds max length")
	}

	return cfg, nil
}

func atoiBounded(v string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}
