package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Issuer: "wayfare",
		TTL:    time.Hour,
		Secret: testSecret,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestTTL(t *testing.T) {
	m := newTestManager(t)
	if m.TTL() != time.Hour {
		t.Errorf("TTL = %v, want %v", m.TTL(), time.Hour)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, exp, err := m.Issue("user-1", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Errorf("exp = %v, want %v", exp, now.Add(time.Hour))
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Issuer != "wayfare" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, _, err := m.Issue("user-1", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(tok, now.Add(2*time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify expired = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	m := newTestManager(t)
	now := time.Now().UTC()

	tok, _, err := m.Issue("user-1", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token segments = %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := m.Verify(tampered, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify tampered = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(Config{
		Issuer: "wayfare",
		TTL:    time.Hour,
		Secret: []byte("another-secret-another-secret-ab"),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := other.Issue("user-1", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(tok, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(Config{
		Issuer: "someone-else",
		TTL:    time.Hour,
		Secret: testSecret,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := other.Issue("user-1", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(tok, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify wrong issuer = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsUnsignedAlg(t *testing.T) {
	m := newTestManager(t)
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "wayfare",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := m.Verify(unsigned, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify alg=none = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := newTestManager(t)
	now := time.Now().UTC()

	for _, tok := range []string{"", "   ", "not.a.jwt", strings.Repeat("x", 5000)} {
		if _, err := m.Verify(tok, now); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%.12q...) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestIssueRejectsEmptyUserID(t *testing.T) {
	m := newTestManager(t)
	if _, _, err := m.Issue("  ", time.Now()); !errors.Is(err, ErrConfig) {
		t.Errorf("Issue empty user = %v, want ErrConfig", err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{TTL: time.Hour}); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("missing secret = %v, want ErrSecretMissing", err)
	}
	if _, err := NewManager(Config{Secret: []byte("short"), TTL: time.Hour, RequireStrongSecret: true}); !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("short secret = %v, want ErrSecretTooShort", err)
	}
	if _, err := NewManager(Config{Secret: testSecret}); !errors.Is(err, ErrConfig) {
		t.Errorf("zero TTL = %v, want ErrConfig", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(SecretEnvKey, string(testSecret))
	t.Setenv("WAYFARE_TOKEN_ISSUER", "wayfare-staging")
	t.Setenv("WAYFARE_TOKEN_TTL", "12h")
	t.Setenv("WAYFARE_REQUIRE_STRONG_SECRET", "true")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "wayfare-staging" || cfg.TTL != 12*time.Hour || !cfg.RequireStrongSecret {
		t.Errorf("cfg = %+v", cfg)
	}
	if string(cfg.Secret) != string(testSecret) {
		t.Errorf("secret = %q", cfg.Secret)
	}
}

func TestLoadConfigFromEnvMissingSecret(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("LoadConfigFromEnv = %v, want ErrSecretMissing", err)
	}
}

func TestLoadConfigFromEnvWeakSecretRejected(t *testing.T) {
	t.Setenv(SecretEnvKey, "weak")
	t.Setenv("WAYFARE_REQUIRE_STRONG_SECRET", "true")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("LoadConfigFromEnv = %v, want ErrSecretTooShort", err)
	}
}
