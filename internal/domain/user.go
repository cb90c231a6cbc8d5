package domain

import "time"

// User is the credential record for an authenticated principal.
type User struct {
	PrincipalID  string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
