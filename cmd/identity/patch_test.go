package identity

import (
	"strings"
	"testing"
	"time"
)

func strp(s string) *string { return &s }

func TestPatchIsZero(t *testing.T) {
	if !(Patch{}).IsZero() {
		t.Error("empty patch should be zero")
	}
	if (Patch{Bio: strp("hi")}).IsZero() {
		t.Error("patch with bio should not be zero")
	}
	now := time.Now()
	if (Patch{TouchLastActive: &now}).IsZero() {
		t.Error("patch touching last_active should not be zero")
	}
}

func TestPatchValidate(t *testing.T) {
	ok := []Patch{
		{},
		{Bio: strp(strings.Repeat("x", MaxBioLength))},
		{Social: &SocialLinks{Instagram: "https://instagram.com/ab"}},
		{Social: &SocialLinks{}},
		{Settings: &Settings{Privacy: PrivacySettings{ProfileVisibility: VisibilityFriends}}},
	}
	for i, p := range ok {
		if err := p.Validate(); err != nil {
			t.Errorf("case %d: Validate = %v, want nil", i, err)
		}
	}

	bad := []Patch{
		{Bio: strp(strings.Repeat("x", MaxBioLength+1))},
		{Social: &SocialLinks{Twitter: "not a url"}},
		{Social: &SocialLinks{Facebook: "ftp://example.com/x"}},
		{Settings: &Settings{Privacy: PrivacySettings{ProfileVisibility: "everyone"}}},
	}
	for i, p := range bad {
		err := p.Validate()
		if err == nil {
			t.Errorf("case %d: Validate = nil, want error", i)
			continue
		}
		if !IsInvalidInput(err) {
			t.Errorf("case %d: Validate = %v, want invalid-input kind", i, err)
		}
	}
}

func TestPatchValidateCountsRunes(t *testing.T) {
	// 250 multibyte runes are fine even though the byte length exceeds 250.
	p := Patch{Bio: strp(strings.Repeat("ø", MaxBioLength))}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}
}

func TestPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.AddDate(0, 1, 0)

	u := User{
		ID:           "id-1",
		Username:     "ab",
		FullName:     "ab",
		Email:        "a.b@x.com",
		PasswordHash: "$2b$old",
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	p := Patch{
		FullName: strp("  Alice B  "),
		Bio:      strp("roaming"),
		Location: &Location{Country: "Norway", City: "Bergen"},
	}
	got := p.Apply(u, now)

	if got.FullName != "Alice B" {
		t.Errorf("FullName = %q", got.FullName)
	}
	if got.Bio != "roaming" {
		t.Errorf("Bio = %q", got.Bio)
	}
	if got.Location.City != "Bergen" {
		t.Errorf("Location = %+v", got.Location)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
	// Untouched fields survive.
	if got.Email != u.Email || got.Username != u.Username || got.PasswordHash != u.PasswordHash {
		t.Errorf("untouched fields changed: %+v", got)
	}
	// Input is a value; the original is unchanged.
	if u.FullName != "ab" {
		t.Errorf("original mutated: %+v", u)
	}
}
