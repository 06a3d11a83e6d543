package entity

import "time"

// OAuthState is a pending external login, created when the user is sent to the provider
// and consumed exactly once by the callback.
type OAuthState struct {
	// State is the opaque value round-tripped through the provider.
	State    string
	Provider string
	// CodeVerifier is the PKCE verifier sent with the code exchange.
	CodeVerifier string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// IsExpired reports whether the state can no longer be used at now.
func (s *OAuthState) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
