package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hash validates plain against the policy and returns its bcrypt digest.
func (c Config) Hash(plain string) (string, error) {
	if err := c.Validate(plain); err != nil {
		return "", err
	}

	cost := c.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", ErrInvalidCost
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches the stored bcrypt digest.
// The comparison is constant-time at the library level. A malformed digest
// returns ErrInvalidHash; a clean mismatch returns (false, nil).
func (c Config) Verify(encoded, plain string) (bool, error) {
	if !looksLikeBcrypt(encoded) {
		return false, ErrInvalidHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return false, ErrInvalidHash
	default:
		var hvErr bcrypt.HashVersionTooNewError
		var ivErr bcrypt.InvalidHashPrefixError
		if errors.As(err, &hvErr) || errors.As(err, &ivErr) {
			return false, ErrInvalidHash
		}
		return false, err
	}
}

func looksLikeBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
