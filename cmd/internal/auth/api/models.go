package authapi

import (
	"time"

	"wayfare/cmd/identity"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// profilePatchRequest is the accepted shape of PUT /profile.
//
// There is intentionally no password, email, or isVerified field here:
// server-managed attributes are stripped structurally, no matter what the
// caller supplies. Decoding is lenient, so their presence is ignored rather
// than rejected.
type profilePatchRequest struct {
	FullName     *string               `json:"fullName"`
	ProfilePhoto *string               `json:"profilePhoto"`
	Bio          *string               `json:"bio"`
	Location     *identity.Location    `json:"location"`
	Preferences  *identity.Preferences `json:"preferences"`
	Social       *identity.SocialLinks `json:"social"`
	Settings     *identity.Settings    `json:"settings"`
}

func (r profilePatchRequest) toPatch() identity.Patch {
	return identity.Patch{
		FullName:     r.FullName,
		ProfilePhoto: r.ProfilePhoto,
		Bio:          r.Bio,
		Location:     r.Location,
		Preferences:  r.Preferences,
		Social:       r.Social,
		Settings:     r.Settings,
	}
}

// userResponse is the redacted external representation of a user.
// The password hash has no field here and can never leak through this type.
type userResponse struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	FullName     string               `json:"fullName"`
	Email        string               `json:"email"`
	ProfilePhoto string               `json:"profilePhoto"`
	Bio          string               `json:"bio"`
	Location     identity.Location    `json:"location"`
	Preferences  identity.Preferences `json:"preferences"`
	Social       identity.SocialLinks `json:"social"`
	Settings     identity.Settings    `json:"settings"`
	Stats        identity.Stats       `json:"stats"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type updateProfileResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
}

type usersResponse struct {
	Users []userResponse `json:"users"`
	Count int            `json:"count"`
}
