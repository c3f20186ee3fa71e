package identity

import (
	"testing"
	"time"
)

func TestFilterValidate(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	valid := []Filter{
		ByID("01ARZ3NDEKTSV4RRFFQ69G5FAV"),
		ByEmail("a@b.co"),
		ByUsername("ab"),
		{Field: FieldCountry, Op: OpEq, Value: "Norway"},
		{Field: FieldCity, Op: OpPrefix, Value: "Ber"},
		JoinedBetween(from, to),
		JoinedBetween(from, time.Time{}),
	}
	for _, f := range valid {
		if err := f.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", f, err)
		}
	}

	invalid := []Filter{
		{},
		{Field: "password_hash", Op: OpEq, Value: "x"},
		{Field: FieldID, Op: OpRange, From: from, To: to},
		{Field: FieldEmail, Op: OpEq, Value: ""},
		{Field: FieldJoined, Op: OpEq, Value: "2024"},
		{Field: FieldJoined, Op: OpRange},
	}
	for _, f := range invalid {
		err := f.Validate()
		if err == nil {
			t.Errorf("Validate(%+v) = nil, want error", f)
			continue
		}
		if !IsInvalidInput(err) {
			t.Errorf("Validate(%+v) = %v, want invalid-input kind", f, err)
		}
	}
}

func TestValidateFiltersRejectsEmptySet(t *testing.T) {
	if err := ValidateFilters(nil); err == nil {
		t.Fatal("ValidateFilters(nil) = nil, want error")
	}
}

func TestFilterConstructorsNormalize(t *testing.T) {
	f := ByEmail("  User@Example.COM ")
	if f.Value != "user@example.com" {
		t.Errorf("ByEmail value = %q", f.Value)
	}
	f = ByUsername(" Wanderer ")
	if f.Value != "wanderer" {
		t.Errorf("ByUsername value = %q", f.Value)
	}
}

func TestFilterMatches(t *testing.T) {
	joined := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	u := User{
		ID:       "id-1",
		Username: "ab",
		Email:    "a.b@x.com",
		Location: Location{Country: "Norway", City: "Bergen"},
		Stats:    Stats{JoinedDate: joined},
	}

	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"id eq", ByID("id-1"), true},
		{"id miss", ByID("id-2"), false},
		{"email case-insensitive", ByEmail("A.B@X.COM"), true},
		{"username eq", ByUsername("AB"), true},
		{"city prefix", Filter{Field: FieldCity, Op: OpPrefix, Value: "Ber"}, true},
		{"city prefix miss", Filter{Field: FieldCity, Op: OpPrefix, Value: "Oslo"}, false},
		{"joined in range", JoinedBetween(joined.AddDate(0, -1, 0), joined.AddDate(0, 1, 0)), true},
		{"joined at From is inclusive", JoinedBetween(joined, joined.AddDate(0, 1, 0)), true},
		{"joined at To is exclusive", JoinedBetween(joined.AddDate(0, -1, 0), joined), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.f.Matches(u); got != c.want {
				t.Errorf("Matches = %v, want %v", got, c.want)
			}
		})
	}
}
