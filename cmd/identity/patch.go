package identity

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxBioLength bounds the free-text bio field.
const MaxBioLength = 250

// Patch is a typed partial update for a user record. Nil fields are left
// untouched. There is deliberately no way to express an email, password-hash,
// or verification change through Patch apart from SetPasswordHash, which only
// the password-change path uses; the generic profile-update path never sets it.
type Patch struct {
	FullName     *string
	ProfilePhoto *string
	Bio          *string
	Location     *Location
	Preferences  *Preferences
	Social       *SocialLinks
	Settings     *Settings

	// SetPasswordHash is reserved for the dedicated password-change
	// operation. It carries an already-hashed secret, never plaintext.
	SetPasswordHash *string

	// TouchLastActive updates stats.last_active to the given time.
	TouchLastActive *time.Time
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.FullName == nil && p.ProfilePhoto == nil && p.Bio == nil &&
		p.Location == nil && p.Preferences == nil && p.Social == nil &&
		p.Settings == nil && p.SetPasswordHash == nil && p.TouchLastActive == nil
}

// Validate enforces field-level constraints before the patch reaches a store.
func (p Patch) Validate() error {
	const op = "identity.Patch"

	if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > MaxBioLength {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "bio exceeds 250 characters"}
	}
	if p.Social != nil {
		for _, link := range []string{p.Social.Instagram, p.Social.Twitter, p.Social.Facebook} {
			if link == "" {
				continue
			}
			if !validURL(link) {
				return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid social link URL"}
			}
		}
	}
	if p.Settings != nil {
		switch p.Settings.Privacy.ProfileVisibility {
		case VisibilityPublic, VisibilityPrivate, VisibilityFriends:
		default:
			return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid profile visibility"}
		}
	}
	return nil
}

// Apply returns u with the patch applied and updated_at set to now.
// Shared by the in-memory store and by tests; SQL/Mongo engines translate
// the patch natively instead.
func (p Patch) Apply(u User, now time.Time) User {
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.ProfilePhoto != nil {
		u.ProfilePhoto = strings.TrimSpace(*p.ProfilePhoto)
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
	if p.Social != nil {
		u.Social = *p.Social
	}
	if p.Settings != nil {
		u.Settings = *p.Settings
	}
	if p.SetPasswordHash != nil {
		u.PasswordHash = *p.SetPasswordHash
	}
	if p.TouchLastActive != nil {
		u.Stats.LastActive = *p.TouchLastActive
	}
	u.UpdatedAt = now
	return u
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
