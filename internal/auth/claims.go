package auth

import (
	"time"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// VerifiedClaims is the decoded, signature-checked content of a token.
// Fields are unexported so a value cannot drift from what was signed.
type VerifiedClaims struct {
	subject   string
	roles     []domain.Role
	kind      domain.TokenKind
	issuedAt  time.Time
	expiresAt time.Time
}

// Subject returns the principal id the token was issued to.
func (c VerifiedClaims) Subject() string { return c.subject }

// Roles returns a copy of the signed role set.
func (c VerifiedClaims) Roles() []domain.Role {
	out := make([]domain.Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// HasRole reports whether role is in the signed role set.
func (c VerifiedClaims) HasRole(role domain.Role) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

// Kind reports whether these are access or refresh claims.
func (c VerifiedClaims) Kind() domain.TokenKind { return c.kind }

func (c VerifiedClaims) IssuedAt() time.Time { return c.issuedAt }

func (c VerifiedClaims) ExpiresAt() time.Time { return c.expiresAt }

// Principal rebuilds the principal described by the claims.
func (c VerifiedClaims) Principal() domain.Principal {
	return domain.Principal{ID: c.subject, Roles: c.Roles()}
}
