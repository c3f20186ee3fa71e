package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wayfare/cmd/security/password"
)

// Service orchestrates registration, login, profile retrieval/update, and
// password change over a credential Store.
//
// It holds no mutable cross-request state: uniqueness races between the
// existence probe and the final insert are resolved by the store's unique
// index, never by in-process locking.
type Service struct {
	store  Store
	hasher password.Config
	log    *slog.Logger

	// dummyHash absorbs a bcrypt verify on unknown-email logins so the
	// not-found path costs the same as a wrong-password path.
	dummyHash string
}

// NewService constructs a Service.
func NewService(store Store, hasher password.Config, log *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("identity: nil store")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Service{store: store, hasher: hasher, log: log}

	if h, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = h
	}
	return s, nil
}

// maxUsernameProbes bounds the suffix search. The probe is deterministic and
// dense, so hitting this bound means something is systematically wrong.
const maxUsernameProbes = 10000

// Register creates a new user from an email and plaintext password.
//
// The username is derived from the email local part (non-alphanumerics
// stripped); when taken, suffixes 1, 2, ... are probed in order and the first
// unused one wins. The final insert can still lose a race with a concurrent
// registration, in which case the store's unique index turns it into a
// ConflictError.
func (s *Service) Register(ctx context.Context, email, plainPassword string) (User, error) {
	const op = "identity.Register"

	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid email address"}
	}
	if err := s.hasher.Validate(plainPassword); err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	if taken, err := s.store.Exists(ctx, ByEmail(email)); err != nil {
		return User{}, err
	} else if taken {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	username, err := s.deriveUsername(ctx, email)
	if err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	now := time.Now().UTC()
	id, err := NewUserID(now)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           id,
		Username:     username,
		FullName:     username,
		Email:        email,
		PasswordHash: hash,
		ProfilePhoto: "",
		Bio:          "",
		Location:     Location{},
		Preferences:  DefaultPreferences(),
		Social:       SocialLinks{},
		Settings:     DefaultSettings(),
		Stats:        NewStats(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Single atomic insert: either the whole record lands or nothing does.
	if err := s.store.Insert(ctx, u); err != nil {
		return User{}, err
	}

	s.log.Info("identity.register", "user_id", u.ID, "username", username)
	return u, nil
}

// deriveUsername probes base, base1, base2, ... for the first unused name.
func (s *Service) deriveUsername(ctx context.Context, email string) (string, error) {
	base := UsernameBase(email)
	if base == "" {
		base = "user"
	}

	for i := 0; i < maxUsernameProbes; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		taken, err := s.store.Exists(ctx, ByUsername(candidate))
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", OpError{Op: "identity.Register", Kind: ErrConflict, Msg: "username space exhausted"}
}

// Login verifies credentials and returns the user.
//
// Unknown email and wrong password fail identically: same error kind, same
// message, and a bcrypt verify on both paths.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (User, error) {
	u, err := s.store.FindOne(ctx, ByEmail(email))
	if err != nil {
		if IsNotFound(err) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(s.dummyHash, plainPassword)
			}
			return User{}, badCredentials()
		}
		return User{}, err
	}

	ok, err := s.hasher.Verify(u.PasswordHash, plainPassword)
	if err != nil || !ok {
		return User{}, badCredentials()
	}

	// Best-effort activity timestamp; a failure here must not fail the login.
	now := time.Now().UTC()
	if _, err := s.store.UpdateByFilter(ctx, Patch{TouchLastActive: &now}, ByID(u.ID)); err != nil {
		s.log.Warn("identity.login.touch.fail", "err", err, "user_id", u.ID)
	} else {
		u.Stats.LastActive = now
	}

	return u, nil
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.store.FindOne(ctx, ByID(id))
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.Find(ctx, FindOptions{SortNewestFirst: true})
}

// UpdateProfile applies a profile patch to the user.
//
// The patch type cannot carry email or verification changes, and any
// password-hash assignment is discarded here: this path mutates profile
// fields only, no matter what the caller managed to smuggle into the patch.
func (s *Service) UpdateProfile(ctx context.Context, id string, p Patch) (User, error) {
	p.SetPasswordHash = nil

	if err := p.Validate(); err != nil {
		return User{}, err
	}
	if p.IsZero() {
		return s.store.FindOne(ctx, ByID(id))
	}
	return s.store.UpdateByFilter(ctx, p, ByID(id))
}

// ChangePassword verifies the current plaintext password and replaces the
// stored hash with a hash of the new one. A mismatched current password
// returns ErrUnauthorized and leaves the stored hash untouched.
func (s *Service) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	const op = "identity.ChangePassword"

	u, err := s.store.FindOne(ctx, ByID(id))
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(u.PasswordHash, currentPassword)
	if err != nil || !ok {
		return OpError{Op: op, Kind: ErrUnauthorized, Msg: "current password is incorrect"}
	}

	if err := s.hasher.Validate(newPassword); err != nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	if _, err := s.store.UpdateByFilter(ctx, Patch{SetPasswordHash: &hash}, ByID(id)); err != nil {
		return err
	}

	s.log.Info("identity.password.changed", "user_id", id)
	return nil
}
