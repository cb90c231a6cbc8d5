package dto

import (
	"time"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token in the body, never in a header.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPairResponse is the wire form of a token pair.
type TokenPairResponse struct {
	TokenType        string    `json:"token_type"`
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// PrincipalResponse describes an identity.
type PrincipalResponse struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
	Guest bool     `json:"guest"`
}

// UserResponse is the public part of a credential record.
type UserResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MergeResponse summarizes a guest cart merge.
type MergeResponse struct {
	Reparented int `json:"reparented"`
	Discarded  int `json:"discarded"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Principal PrincipalResponse `json:"principal"`
	User      *UserResponse     `json:"user,omitempty"`
	Tokens    TokenPairResponse `json:"tokens"`
	Merge     *MergeResponse    `json:"merge,omitempty"`
}

// RefreshResponse is returned by the refresh endpoint.
type RefreshResponse struct {
	Tokens TokenPairResponse `json:"tokens"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Principal PrincipalResponse `json:"principal"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// UpdateRolesRequest replaces a principal's roles.
type UpdateRolesRequest struct {
	Roles []string `json:"roles"`
}

func NewTokenPairResponse(p domain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		TokenType:        "Bearer",
		AccessToken:      p.AccessToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

func NewPrincipalResponse(p domain.Principal) PrincipalResponse {
	return PrincipalResponse{ID: p.ID, Roles: domain.RoleStrings(p.Roles), Guest: p.IsGuest()}
}
