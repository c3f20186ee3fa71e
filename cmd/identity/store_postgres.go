package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the credential store over PostgreSQL.
//
// Design notes:
//
//   - The pgx pool is owned by the caller; Close does NOT close it.
//   - Schema and table identifiers are always quoted, never interpolated raw.
//   - Unique indexes on email_norm and username_norm are the uniqueness
//     authority; 23505 is classified into ConflictError with the logical
//     field name.
//   - Profile sub-documents (preferences, social, settings, stats) live in
//     jsonb columns keyed by their wire names.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "wayfare").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "wayfare",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const userColumns = `id, username, full_name, email, password_hash, profile_photo, bio,
       country, city, preferences, social, settings, stats, created_at, updated_at`

func (s *PostgresStore) users() string {
	return pgx.Identifier{s.schema, "users"}.Sanitize()
}

func (s *PostgresStore) Insert(ctx context.Context, u User) error {
	const op = "identity.PostgresStore.Insert"

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(u.ID) == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing id"}
	}

	prefs, social, settings, stats, err := marshalSubdocs(u)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.users()+` (
		     id, username, username_norm, full_name, email, email_norm, password_hash,
		     profile_photo, bio, country, city, preferences, social, settings, stats,
		     created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		u.ID,
		u.Username,
		NormalizeUsername(u.Username),
		u.FullName,
		u.Email,
		NormalizeEmail(u.Email),
		u.PasswordHash,
		u.ProfilePhoto,
		u.Bio,
		u.Location.Country,
		u.Location.City,
		prefs, social, settings, stats,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return ConflictError{Op: op, Field: field}
		}
		return err
	}
	return nil
}

func (s *PostgresStore) FindOne(ctx context.Context, filters ...Filter) (User, error) {
	const op = "identity.PostgresStore.FindOne"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := ValidateFilters(filters); err != nil {
		return User{}, err
	}

	where, args, err := pgWhere(filters, 1)
	if err != nil {
		return User{}, err
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+s.users()+` WHERE `+where+` LIMIT 1`,
		args...,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) Find(ctx context.Context, opts FindOptions, filters ...Filter) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	q := `SELECT ` + userColumns + ` FROM ` + s.users()
	var args []any
	if len(filters) > 0 {
		where, wargs, err := pgWhere(filters, 1)
		if err != nil {
			return nil, err
		}
		q += ` WHERE ` + where
		args = wargs
	}

	if opts.SortNewestFirst {
		q += ` ORDER BY created_at DESC`
	} else {
		q += ` ORDER BY created_at ASC`
	}
	if opts.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(opts.Limit)
	}
	if opts.Offset > 0 {
		q += ` OFFSET ` + strconv.Itoa(opts.Offset)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Exists(ctx context.Context, filters ...Filter) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := ValidateFilters(filters); err != nil {
		return false, err
	}

	where, args, err := pgWhere(filters, 1)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+s.users()+` WHERE `+where+`)`,
		args...,
	).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) UpdateByFilter(ctx context.Context, p Patch, filters ...Filter) (User, error) {
	const op = "identity.PostgresStore.UpdateByFilter"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := ValidateFilters(filters); err != nil {
		return User{}, err
	}
	if err := p.Validate(); err != nil {
		return User{}, err
	}

	sets, args, next, err := pgSets(p)
	if err != nil {
		return User{}, err
	}
	if len(sets) == 0 {
		return s.FindOne(ctx, filters...)
	}

	where, wargs, err := pgWhere(filters, next)
	if err != nil {
		return User{}, err
	}
	args = append(args, wargs...)

	row := s.pool.QueryRow(ctx,
		`UPDATE `+s.users()+` SET `+strings.Join(sets, ", ")+
			` WHERE `+where+` RETURNING `+userColumns,
		args...,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// EnsureIndexes creates the users table and its unique indexes.
// This is the one-shot migration entry point; the server never runs it
// implicitly at boot.
func (s *PostgresStore) EnsureIndexes(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS ` + pgx.Identifier{s.schema}.Sanitize(),
		`CREATE TABLE IF NOT EXISTS ` + s.users() + ` (
		     id            text PRIMARY KEY,
		     username      text NOT NULL,
		     username_norm text NOT NULL,
		     full_name     text NOT NULL DEFAULT '',
		     email         text NOT NULL,
		     email_norm    text NOT NULL,
		     password_hash text NOT NULL,
		     profile_photo text NOT NULL DEFAULT '',
		     bio           text NOT NULL DEFAULT '',
		     country       text NOT NULL DEFAULT '',
		     city          text NOT NULL DEFAULT '',
		     preferences   jsonb NOT NULL DEFAULT '{}'::jsonb,
		     social        jsonb NOT NULL DEFAULT '{}'::jsonb,
		     settings      jsonb NOT NULL DEFAULT '{}'::jsonb,
		     stats         jsonb NOT NULL DEFAULT '{}'::jsonb,
		     created_at    timestamptz NOT NULL,
		     updated_at    timestamptz NOT NULL
		 )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email_norm ON ` + s.users() + ` (email_norm)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username_norm ON ` + s.users() + ` (username_norm)`,
		`CREATE INDEX IF NOT EXISTS ix_users_location ON ` + s.users() + ` (country, city)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op: the pool is owned by the app.
func (s *PostgresStore) Close(_ context.Context) error { return nil }

// ---- helpers ----

type pgRow interface {
	Scan(dest ...any) error
}

func scanUser(row pgRow) (User, error) {
	var (
		u        User
		prefs    []byte
		social   []byte
		settings []byte
		stats    []byte
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
		&u.ProfilePhoto, &u.Bio, &u.Location.Country, &u.Location.City,
		&prefs, &social, &settings, &stats, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(social, &u.Social); err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(settings, &u.Settings); err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(stats, &u.Stats); err != nil {
		return User{}, err
	}
	return u, nil
}

func marshalSubdocs(u User) (prefs, social, settings, stats []byte, err error) {
	if prefs, err = json.Marshal(u.Preferences); err != nil {
		return
	}
	if social, err = json.Marshal(u.Social); err != nil {
		return
	}
	if settings, err = json.Marshal(u.Settings); err != nil {
		return
	}
	stats, err = json.Marshal(u.Stats)
	return
}

// pgWhere translates validated filters into a WHERE clause with placeholders
// starting at argIdx.
func pgWhere(filters []Filter, argIdx int) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, f := range filters {
		col, ok := pgColumn(f.Field)
		if !ok {
			return "", nil, OpError{Op: "identity.PostgresStore", Kind: ErrInvalidInput, Msg: "unmapped filter field"}
		}
		switch f.Op {
		case OpEq:
			conds = append(conds, fmt.Sprintf("%s = $%d", col, argIdx))
			args = append(args, f.Value)
			argIdx++
		case OpPrefix:
			conds = append(conds, fmt.Sprintf("%s LIKE $%d", col, argIdx))
			args = append(args, escapeLike(f.Value)+"%")
			argIdx++
		case OpRange:
			if !f.From.IsZero() {
				conds = append(conds, fmt.Sprintf("%s >= $%d", col, argIdx))
				args = append(args, f.From)
				argIdx++
			}
			if !f.To.IsZero() {
				conds = append(conds, fmt.Sprintf("%s < $%d", col, argIdx))
				args = append(args, f.To)
				argIdx++
			}
		default:
			return "", nil, OpError{Op: "identity.PostgresStore", Kind: ErrInvalidInput, Msg: "unmapped filter op"}
		}
	}
	return strings.Join(conds, " AND "), args, nil
}

func pgColumn(f Field) (string, bool) {
	switch f {
	case FieldID:
		return "id", true
	case FieldEmail:
		return "email_norm", true
	case FieldUsername:
		return "username_norm", true
	case FieldCountry:
		return "country", true
	case FieldCity:
		return "city", true
	case FieldJoined:
		return "(stats->>'joinedDate')::timestamptz", true
	default:
		return "", false
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// pgSets translates a Patch into SET clauses. Placeholders start at $1;
// next is the first free placeholder index after the patch args.
func pgSets(p Patch) (sets []string, args []any, next int, err error) {
	next = 1
	add := func(expr string, vals ...any) {
		idx := make([]any, len(vals))
		for i := range vals {
			idx[i] = next
			next++
		}
		sets = append(sets, fmt.Sprintf(expr, idx...))
		args = append(args, vals...)
	}

	if p.FullName != nil {
		add("full_name = $%d", strings.TrimSpace(*p.FullName))
	}
	if p.ProfilePhoto != nil {
		add("profile_photo = $%d", strings.TrimSpace(*p.ProfilePhoto))
	}
	if p.Bio != nil {
		add("bio = $%d", *p.Bio)
	}
	if p.Location != nil {
		add("country = $%d", p.Location.Country)
		add("city = $%d", p.Location.City)
	}
	if p.Preferences != nil {
		b, merr := json.Marshal(*p.Preferences)
		if merr != nil {
			return nil, nil, 0, merr
		}
		add("preferences = $%d", b)
	}
	if p.Social != nil {
		b, merr := json.Marshal(*p.Social)
		if merr != nil {
			return nil, nil, 0, merr
		}
		add("social = $%d", b)
	}
	if p.Settings != nil {
		b, merr := json.Marshal(*p.Settings)
		if merr != nil {
			return nil, nil, 0, merr
		}
		add("settings = $%d", b)
	}
	if p.SetPasswordHash != nil {
		add("password_hash = $%d", *p.SetPasswordHash)
	}
	if p.TouchLastActive != nil {
		add("stats = jsonb_set(stats, '{lastActive}', to_jsonb($%d::timestamptz), true)", p.TouchLastActive.UTC())
	}

	if len(sets) > 0 {
		sets = append(sets, fmt.Sprintf("updated_at = $%d", next))
		args = append(args, time.Now().UTC())
		next++
	}
	return sets, args, next, nil
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable index names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch c {
	case "uq_users_email_norm":
		return "email", true
	case "uq_users_username_norm":
		return "username", true
	default:
		switch {
		case strings.Contains(c, "email"):
			return "email", true
		case strings.Contains(c, "username"):
			return "username", true
		default:
			return "unique", true
		}
	}
}
