package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken covers bad signatures, malformed input, wrong token kind and expiry.
	// Callers treat it as terminal; retrying with the same token cannot succeed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is the expiry flavour of ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)

	// ErrInvalidCredentials means the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden means the verified role set lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
