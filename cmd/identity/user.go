package identity

import "time"

// User is Wayfare's canonical account record.
//
// PasswordHash is a server-side secret: it must never appear in any
// externally visible representation of the user. The HTTP layer builds its
// own response models and never serializes this struct directly.
type User struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
	FullName string `bson:"full_name"`
	Email    string `bson:"email"`

	PasswordHash string `bson:"password_hash"`

	ProfilePhoto string      `bson:"profile_photo"`
	Bio          string      `bson:"bio"`
	Location     Location    `bson:"location"`
	Preferences  Preferences `bson:"preferences"`
	Social       SocialLinks `bson:"social"`
	Settings     Settings    `bson:"settings"`
	Stats        Stats       `bson:"stats"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Location is a structured place of residence.
type Location struct {
	Country string `bson:"country" json:"country"`
	City    string `bson:"city" json:"city"`
}

// Preferences holds travel-interest category lists.
type Preferences struct {
	PlaceTypes    []string `bson:"place_types" json:"placeTypes"`
	TravelStyle   []string `bson:"travel_style" json:"travelStyle"`
	Activities    []string `bson:"activities" json:"activities"`
	Accommodation []string `bson:"accommodation" json:"accommodation"`
}

// SocialLinks holds optional profile URLs. Values are validated as URLs
// before they reach the store.
type SocialLinks struct {
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
}

// PrivacySettings controls profile and photo visibility.
type PrivacySettings struct {
	DefaultPhotoPrivacy bool   `bson:"default_photo_privacy" json:"defaultPhotoPrivacy"`
	ProfileVisibility   string `bson:"profile_visibility" json:"profileVisibility"` // public/private/friends
	ShowLocation        bool   `bson:"show_location" json:"showLocation"`
	ShowVisitedPlaces   bool   `bson:"show_visited_places" json:"showVisitedPlaces"`
}

// Settings holds notification and locale preferences.
type Settings struct {
	EmailNotifications bool            `bson:"email_notifications" json:"emailNotifications"`
	Language           string          `bson:"language" json:"language"`
	Currency           string          `bson:"currency" json:"currency"`
	Privacy            PrivacySettings `bson:"privacy" json:"privacy"`
}

// Stats holds derived usage counters and activity timestamps.
type Stats struct {
	TotalPlaces        int       `bson:"total_places" json:"totalPlaces"`
	TotalPhotos        int       `bson:"total_photos" json:"totalPhotos"`
	TotalPublicPlaces  int       `bson:"total_public_places" json:"totalPublicPlaces"`
	TotalPrivatePlaces int       `bson:"total_private_places" json:"totalPrivatePlaces"`
	JoinedDate         time.Time `bson:"joined_date" json:"joinedDate"`
	LastActive         time.Time `bson:"last_active" json:"lastActive"`
}

// ProfileVisibility values accepted by PrivacySettings.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityFriends = "friends"
)

// DefaultSettings returns the settings applied to a newly registered user.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications: true,
		Language:           "en",
		Currency:           "USD",
		Privacy: PrivacySettings{
			DefaultPhotoPrivacy: true,
			ProfileVisibility:   VisibilityPublic,
			ShowLocation:        true,
			ShowVisitedPlaces:   true,
		},
	}
}

// DefaultPreferences returns empty (but non-nil) category lists.
func DefaultPreferences() Preferences {
	return Preferences{
		PlaceTypes:    []string{},
		TravelStyle:   []string{},
		Activities:    []string{},
		Accommodation: []string{},
	}
}

// NewStats returns the initial usage statistics for a user joining at now.
func NewStats(now time.Time) Stats {
	return Stats{
		JoinedDate: now,
		LastActive: now,
	}
}
