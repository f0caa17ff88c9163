package models

import "time"

// DefaultAvatarURL is used for profiles created without an avatar.
const DefaultAvatarURL = "https://www.shutterstock.com/shutterstock/photos/1725655669/display_1500/stock-vector-default-avatar-profile-icon-vector-social-media-user-image-1725655669.jpg"

// Profile is the user-facing record, one per Credential (OwnerID).
type Profile struct {
	ID          string
	OwnerID     string
	Email       string
	DisplayName string
	Bio         string
	AvatarURL   string
	LinkageType LinkageType
	IsAdmin     bool
	CreatedAt   time.Time
}

// NewProfile builds a profile for the given credential with the default
// avatar, an empty bio and no admin rights.
func NewProfile(owner *Credential, displayName string, now time.Time) *Profile {
	return &Profile{
		OwnerID:     owner.ID,
		Email:       NormalizeEmail(owner.Email),
		DisplayName: displayName,
		AvatarURL:   DefaultAvatarURL,
		LinkageType: owner.LinkageType,
		IsAdmin:     false,
		CreatedAt:   now.UTC(),
	}
}
