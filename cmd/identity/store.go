package identity

import (
	"context"
	"time"
)

// Store is the credential store boundary: user identity persistence with
// storage-enforced uniqueness of normalized email and username.
//
// Contract, shared by all engines:
//
//   - Insert stores exactly one record or none. A duplicate email/username
//     surfaces as ConflictError carrying the logical field name; the unique
//     index in the engine is the correctness authority, so a losing
//     concurrent insert always conflicts rather than overwriting.
//   - FindOne returns ErrNotFound when no user matches.
//   - UpdateByFilter applies a validated Patch to the single matching user
//     and returns the updated record; ErrNotFound when no user matches.
//   - Filters must pass ValidateFilters before translation; engines return
//     ErrInvalidInput otherwise.
type Store interface {
	Insert(ctx context.Context, u User) error
	FindOne(ctx context.Context, filters ...Filter) (User, error)
	Find(ctx context.Context, opts FindOptions, filters ...Filter) ([]User, error)
	Exists(ctx context.Context, filters ...Filter) (bool, error)
	UpdateByFilter(ctx context.Context, p Patch, filters ...Filter) (User, error)

	// EnsureIndexes creates the unique indexes the store relies on.
	// It is an explicit one-shot migration step, never a boot side effect.
	EnsureIndexes(ctx context.Context) error

	Close(ctx context.Context) error
}

// NewUserID returns a new ULID string for a user record.
func NewUserID(now time.Time) (string, error) {
	return newULID(now)
}
