// Package token issues and verifies Wayfare's stateless bearer tokens.
//
// Tokens are HS256-signed JWTs carrying the user ID as subject and a fixed
// expiry (default 7 days). There is no server-side revocation and no refresh
// mechanism: invalidation is purely time-based, and re-login is the only
// renewal path.
package token
