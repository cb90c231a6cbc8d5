package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

// Authorize checks requiredRole against the role set signed into the access token.
// Admin satisfies any requirement. No storage is consulted, so a role change is only
// observed once the holder logs in again: Rotate copies roles from the refresh token,
// which leaves a demoted holder with the old roles for up to the refresh-token TTL.
func Authorize(claims VerifiedClaims, requiredRole domain.Role) error {
	if claims.Kind() != domain.TokenKindAccess {
		return ErrForbidden
	}
	if claims.HasRole(requiredRole) || claims.HasRole(domain.RoleAdmin) {
		return nil
	}
	return ErrForbidden
}

// RequireRole rejects callers whose verified claims lack role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(claims, role); err != nil {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a verified access token is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimsFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
