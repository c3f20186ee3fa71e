// Package password is the single source of truth for password hashing and
// password policy in Wayfare.
//
// Hashing uses bcrypt with a tunable work factor (default cost 10). The
// stored secret is always the bcrypt digest of the most recently set
// plaintext; plaintext never leaves the request that carried it.
package password
