package authapi

import "wayfare/cmd/identity"

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		ProfilePhoto: u.ProfilePhoto,
		Bio:          u.Bio,
		Location:     u.Location,
		Preferences:  u.Preferences,
		Social:       u.Social,
		Settings:     u.Settings,
		Stats:        u.Stats,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserResponses(users []identity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
