package authclient

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionTerminated wraps the cause when a refresh fails or no refresh token is
	// stored. The caller must log in again.
	ErrSessionTerminated = errors.New("authclient: session terminated")

	// ErrUnauthorized is returned when a request replayed with a fresh token is still
	// rejected with 401.
	ErrUnauthorized = errors.New("authclient: unauthorized after token refresh")

	// ErrRequestCanceled is returned when a request's context ends while it waits for
	// a refresh.
	ErrRequestCanceled = errors.New("authclient: request canceled while awaiting refresh")

	// ErrSessionReset is returned to requests pending when the session is reset.
	ErrSessionReset = errors.New("authclient: session reset")

	// ErrNoCredentials means no refresh token is stored.
	ErrNoCredentials = errors.New("authclient: no refresh token stored")

	// ErrInvalidCredentials is returned by Session.Login for a rejected email/password.
	ErrInvalidCredentials = errors.New("authclient: invalid credentials")
)

// APIError is a non-2xx response in the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: %d %s: %s", e.Status, e.Code, e.Message)
}
