package token

import "errors"

// Public, stable errors for callers.
var (
	ErrConfig         = errors.New("invalid token config")
	ErrSecretMissing  = errors.New("token secret missing")
	ErrSecretTooShort = errors.New("token secret too short")
	ErrInvalidToken   = errors.New("invalid token")
)
