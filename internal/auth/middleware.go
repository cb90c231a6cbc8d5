package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

const claimsKey = "auth_claims"

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseAccess(token string) (VerifiedClaims, error)
}

// AuthMiddleware validates bearer tokens and exposes their verified claims.
type AuthMiddleware struct {
	tokens TokenParser
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	claims, err := m.tokens.ParseAccess(raw)
	if err != nil {
		return apperrors.NewDomainError("INVALID_TOKEN", "invalid or expired access token", fiber.StatusUnauthorized, nil)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// Optional attaches claims when a valid bearer token is sent and otherwise continues
// anonymously. A present but invalid token is still rejected so clients can refresh.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	return m.Handle(c)
}

// ClaimsFromContext retrieves the verified claims of the caller.
func ClaimsFromContext(c *fiber.Ctx) (VerifiedClaims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return VerifiedClaims{}, false
	}
	claims, ok := val.(VerifiedClaims)
	return claims, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
