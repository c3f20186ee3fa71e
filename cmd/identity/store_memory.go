package identity

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory credential store.
//
// It is the dev fallback when no database URL is configured, and the store
// unit tests run against. Uniqueness semantics match the database engines:
// normalized email and username are enforced at insert under the same lock,
// so a losing concurrent insert gets ConflictError, never an overwrite.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]User   // id -> record
	email    map[string]string // normalized email -> id
	username map[string]string // normalized username -> id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]User),
		email:    make(map[string]string),
		username: make(map[string]string),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, u User) error {
	const op = "identity.MemoryStore.Insert"

	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing id"}
	}

	emailKey := NormalizeEmail(u.Email)
	usernameKey := NormalizeUsername(u.Username)
	if emailKey == "" || usernameKey == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing email or username"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.email[emailKey]; ok {
		return ConflictError{Op: op, Field: "email"}
	}
	if _, ok := s.username[usernameKey]; ok {
		return ConflictError{Op: op, Field: "username"}
	}
	if _, ok := s.users[u.ID]; ok {
		return ConflictError{Op: op, Field: "id"}
	}

	s.users[u.ID] = u
	s.email[emailKey] = u.ID
	s.username[usernameKey] = u.ID
	return nil
}

func (s *MemoryStore) FindOne(ctx context.Context, filters ...Filter) (User, error) {
	const op = "identity.MemoryStore.FindOne"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := ValidateFilters(filters); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if matchesAll(u, filters) {
			return u, nil
		}
	}
	return User{}, NotFoundError{Op: op, Resource: "user"}
}

func (s *MemoryStore) Find(ctx context.Context, opts FindOptions, filters ...Filter) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// An empty filter set means "all users" for multi-row queries.
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if matchesAll(u, filters) {
			out = append(out, u)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if opts.SortNewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []User{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Exists(ctx context.Context, filters ...Filter) (bool, error) {
	_, err := s.FindOne(ctx, filters...)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) UpdateByFilter(ctx context.Context, p Patch, filters ...Filter) (User, error) {
	const op = "identity.MemoryStore.UpdateByFilter"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := ValidateFilters(filters); err != nil {
		return User{}, err
	}
	if err := p.Validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if !matchesAll(u, filters) {
			continue
		}
		updated := p.Apply(u, time.Now().UTC())
		s.users[id] = updated
		return updated, nil
	}
	return User{}, NotFoundError{Op: op, Resource: "user"}
}

// EnsureIndexes is a no-op: the maps are the indexes.
func (s *MemoryStore) EnsureIndexes(_ context.Context) error { return nil }

func (s *MemoryStore) Close(_ context.Context) error { return nil }

func matchesAll(u User, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(u) {
			return false
		}
	}
	return true
}
