// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when the username, email or provider account is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for every kind of password login failure
	// (unknown username, account without password, wrong password).
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrWeakPassword is returned when a signup password does not meet the length requirement.
	ErrWeakPassword = errors.New("password too short")

	// ErrUnsupportedProvider is returned for an unknown or unconfigured OAuth2 provider.
	ErrUnsupportedProvider = errors.New("unsupported oauth2 provider")

	// ErrStateNotFound is returned when a login state is unknown, expired or already consumed.
	ErrStateNotFound = errors.New("oauth2 state not found")

	// ErrStateMismatch is returned when a state is presented to a different provider's callback.
	ErrStateMismatch = errors.New("oauth2 state does not match provider")

	// ErrInvalidProfile is returned when a provider profile lacks a subject.
	ErrInvalidProfile = errors.New("invalid external profile")

	// ErrEmailUnavailable is returned when the provider did not share an email address.
	ErrEmailUnavailable = errors.New("email not provided by oauth2 provider")
)
