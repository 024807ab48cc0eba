package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords; callers must not learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionInvalidated marks a session whose user no longer exists. The
	// session is destroyed before this is returned.
	ErrSessionInvalidated = errors.New("session invalidated")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrIdentityNotFound = errors.New("login identity not found")
	ErrSessionsDisabled = errors.New("sessions are disabled")
)
