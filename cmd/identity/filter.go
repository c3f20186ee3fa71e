package identity

import (
	"fmt"
	"time"
)

// Field enumerates the user attributes a Filter may address.
// Keeping this a closed set means no caller-supplied string ever reaches an
// engine as a column or document key.
type Field string

const (
	FieldID       Field = "id"
	FieldEmail    Field = "email"
	FieldUsername Field = "username"
	FieldCountry  Field = "country"
	FieldCity     Field = "city"
	FieldJoined   Field = "joined"
)

// FilterOp enumerates supported match operations.
type FilterOp string

const (
	OpEq     FilterOp = "eq"     // exact match (normalized for email/username)
	OpPrefix FilterOp = "prefix" // pattern match on a leading substring
	OpRange  FilterOp = "range"  // half-open time range [From, To)
)

// Filter is one tagged query condition. Engines translate validated filters
// into their native query syntax; an invalid filter never reaches an engine.
type Filter struct {
	Field Field
	Op    FilterOp

	// Value is used by OpEq and OpPrefix.
	Value string

	// From/To are used by OpRange. Zero means unbounded on that side.
	From time.Time
	To   time.Time
}

// ByID matches a user by primary identifier.
func ByID(id string) Filter { return Filter{Field: FieldID, Op: OpEq, Value: id} }

// ByEmail matches a user by normalized email.
func ByEmail(email string) Filter {
	return Filter{Field: FieldEmail, Op: OpEq, Value: NormalizeEmail(email)}
}

// ByUsername matches a user by normalized username.
func ByUsername(username string) Filter {
	return Filter{Field: FieldUsername, Op: OpEq, Value: NormalizeUsername(username)}
}

// JoinedBetween matches users whose joined date falls in [from, to).
func JoinedBetween(from, to time.Time) Filter {
	return Filter{Field: FieldJoined, Op: OpRange, From: from, To: to}
}

// Validate checks that the filter addresses a known field with an operation
// that field supports, and that required operands are present.
func (f Filter) Validate() error {
	switch f.Field {
	case FieldID, FieldEmail, FieldUsername, FieldCountry, FieldCity:
		if f.Op != OpEq && f.Op != OpPrefix {
			return OpError{Op: "identity.Filter", Kind: ErrInvalidInput, Msg: fmt.Sprintf("op %q not valid for field %q", f.Op, f.Field)}
		}
		if f.Value == "" {
			return OpError{Op: "identity.Filter", Kind: ErrInvalidInput, Msg: "empty filter value"}
		}
	case FieldJoined:
		if f.Op != OpRange {
			return OpError{Op: "identity.Filter", Kind: ErrInvalidInput, Msg: fmt.Sprintf("op %q not valid for field %q", f.Op, f.Field)}
		}
		if f.From.IsZero() && f.To.IsZero() {
			return OpError{Op: "identity.Filter", Kind: ErrInvalidInput, Msg: "unbounded range filter"}
		}
	default:
		return OpError{Op: "identity.Filter", Kind: ErrInvalidInput, Msg: fmt.Sprintf("unknown field %q", f.Field)}
	}
	return nil
}

// ValidateFilters validates a filter set as a unit.
func ValidateFilters(filters []Filter) error {
	if len(filters) == 0 {
		return OpError{Op: "identity.Filter", Kind: ErrInvalidInput, Msg: "no filters"}
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether u satisfies f. Engines with native query languages
// do not use this; the in-memory store and tests do.
func (f Filter) Matches(u User) bool {
	switch f.Field {
	case FieldID:
		return matchString(u.ID, f)
	case FieldEmail:
		return matchString(NormalizeEmail(u.Email), f)
	case FieldUsername:
		return matchString(NormalizeUsername(u.Username), f)
	case FieldCountry:
		return matchString(u.Location.Country, f)
	case FieldCity:
		return matchString(u.Location.City, f)
	case FieldJoined:
		j := u.Stats.JoinedDate
		if !f.From.IsZero() && j.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && !j.Before(f.To) {
			return false
		}
		return true
	default:
		return false
	}
}

func matchString(v string, f Filter) bool {
	switch f.Op {
	case OpEq:
		return v == f.Value
	case OpPrefix:
		return len(v) >= len(f.Value) && v[:len(f.Value)] == f.Value
	default:
		return false
	}
}

// FindOptions controls ordering and bounds for multi-user queries.
type FindOptions struct {
	// SortNewestFirst orders by creation time descending when true.
	SortNewestFirst bool
	// Limit bounds the result set; 0 means no limit.
	Limit int
	// Offset skips leading results.
	Offset int
}
