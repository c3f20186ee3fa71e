package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrInvalidHash      = errors.New("invalid bcrypt hash")
	ErrInvalidCost      = errors.New("bcrypt cost out of range")
)
