package password

import "unicode/utf8"

// Validate checks password policy. It does not mutate input.
func (c Config) Validate(plain string) error {
	// Rune count for the user-facing minimum, byte count for the bcrypt cap.
	if utf8.RuneCountInString(plain) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if len(plain) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}
