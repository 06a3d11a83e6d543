// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// ProviderLocal is the provider of accounts registered with a username and password.
const ProviderLocal = "local"

// User represents a registered user in the system.
// A user is created either by signup (Provider "local", Password set) or by the first
// external login (Provider "google", "github", ...; Password nil).
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the login name and the subject of issued tokens.
	// It must be unique across all users.
	Username string `gorm:"uniqueIndex;size:50;not null"`

	// Email must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash, or nil for accounts that only sign in through a provider.
	// This should never store plaintext passwords.
	Password *string `gorm:"size:255"`

	FullName        string  `gorm:"size:100;not null;default:''"`
	ProfileImageURL *string `gorm:"column:profile_image_url;size:500"`

	// Provider and ProviderID identify the external account; the pair is unique.
	Provider   string  `gorm:"size:20;not null;default:local;uniqueIndex:idx_users_provider_subject"`
	ProviderID *string `gorm:"column:provider_id;size:255;uniqueIndex:idx_users_provider_subject"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// ProfileImage returns the profile image URL, or "" when none is set.
func (u *User) ProfileImage() string {
	if u.ProfileImageURL == nil {
		return ""
	}
	return *u.ProfileImageURL
}
