package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity envelope carried by a bearer token.
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// Manager issues and verifies signed bearer tokens.
type Manager struct {
	cfg Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretMissing
	}
	if cfg.RequireStrongSecret && len(cfg.Secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	if cfg.TTL <= 0 {
		return nil, ErrConfig
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		cfg.Issuer = "wayfare"
	}
	return &Manager{cfg: cfg}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Issue mints a signed token for userID, expiring at now+TTL.
func (m *Manager) Issue(userID string, now time.Time) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, ErrConfig
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	exp := now.Add(m.cfg.TTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    m.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, and expiry, and returns the claims.
// Every failure mode collapses to ErrInvalidToken so callers cannot leak
// which check failed.
func (m *Manager) Verify(tokenStr string, now time.Time) (Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" || len(tokenStr) > 4096 {
		return Claims{}, ErrInvalidToken
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var reg jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tokenStr, &reg, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.cfg.Secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if strings.TrimSpace(reg.Subject) == "" || reg.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		UserID:    reg.Subject,
		ExpiresAt: reg.ExpiresAt.Time,
		Issuer:    reg.Issuer,
	}
	if reg.IssuedAt != nil {
		out.IssuedAt = reg.IssuedAt.Time
	}
	return out, nil
}
