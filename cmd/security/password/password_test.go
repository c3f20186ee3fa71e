package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testConfig() Config {
	return Config{
		Cost:   bcrypt.MinCost,
		Policy: Policy{MinLength: 6, MaxLength: 72},
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	cfg := testConfig()

	h, err := cfg.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if !strings.HasPrefix(h, "$2") {
		t.Fatalf("unexpected hash format: %q", h)
	}

	ok, err := cfg.Verify(h, "secret123")
	if err != nil || !ok {
		t.Errorf("Verify match = %v, %v, want true", ok, err)
	}

	ok, err = cfg.Verify(h, "wrongpass")
	if err != nil {
		t.Errorf("Verify mismatch err = %v, want nil", err)
	}
	if ok {
		t.Error("Verify accepted wrong password")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	cfg := testConfig()

	for _, h := range []string{"", "plaintext", "$1$not-bcrypt", "$2b$short"} {
		ok, err := cfg.Verify(h, "secret123")
		if ok {
			t.Errorf("Verify(%q) = true", h)
		}
		if !errors.Is(err, ErrInvalidHash) {
			t.Errorf("Verify(%q) err = %v, want ErrInvalidHash", h, err)
		}
	}
}

func TestValidatePolicy(t *testing.T) {
	cfg := testConfig()

	if err := cfg.Validate("secret"); err != nil {
		t.Errorf("Validate(6 chars) = %v", err)
	}
	if err := cfg.Validate("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Validate(short) = %v, want ErrPasswordTooShort", err)
	}
	if err := cfg.Validate(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Validate(73 bytes) = %v, want ErrPasswordTooLong", err)
	}

	// Minimum counts runes; maximum counts bytes (bcrypt truncates past 72).
	if err := cfg.Validate("øøøøøø"); err != nil {
		t.Errorf("Validate(6 runes) = %v", err)
	}
	if err := cfg.Validate(strings.Repeat("ø", 40)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Validate(80 bytes) = %v, want ErrPasswordTooLong", err)
	}
}

func TestHashRejectsPolicyViolations(t *testing.T) {
	cfg := testConfig()
	if _, err := cfg.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Hash(short) = %v, want ErrPasswordTooShort", err)
	}
}

func TestHashRejectsBadCost(t *testing.T) {
	cfg := testConfig()
	cfg.Cost = bcrypt.MaxCost + 1
	if _, err := cfg.Hash("secret123"); !errors.Is(err, ErrInvalidCost) {
		t.Errorf("Hash bad cost = %v, want ErrInvalidCost", err)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := DefaultConfig()
	if cfg != want {
		t.Errorf("FromEnv = %+v, want %+v", cfg, want)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WAYFARE_BCRYPT_COST", "12")
	t.Setenv("WAYFARE_PASSWORD_MIN_LEN", "8")
	t.Setenv("WAYFARE_PASSWORD_MAX_LEN", "64")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Cost != 12 || cfg.Policy.MinLength != 8 || cfg.Policy.MaxLength != 64 {
		t.Errorf("FromEnv = %+v", cfg)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("WAYFARE_BCRYPT_COST", "99")
	if _, err := FromEnv(); err == nil {
		t.Error("FromEnv with out-of-range cost = nil, want error")
	}
}

func TestFromEnvRejectsInvertedBounds(t *testing.T) {
	t.Setenv("WAYFARE_PASSWORD_MIN_LEN", "30")
	t.Setenv("WAYFARE_PASSWORD_MAX_LEN", "10")
	if _, err := FromEnv(); err == nil {
		t.Error("FromEnv with min > max = nil, want error")
	}
}
