package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

func claimsFor(t *testing.T, issuer *Issuer, roles ...domain.Role) VerifiedClaims {
	t.Helper()
	pair, err := issuer.Issue(domain.Principal{ID: "p-1", Roles: roles}, issuer.Now())
	require.NoError(t, err)
	claims, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	return claims
}

func TestAuthorize(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	client := claimsFor(t, issuer, domain.RoleClient)
	admin := claimsFor(t, issuer, domain.RoleAdmin)

	assert.NoError(t, Authorize(client, domain.RoleClient))
	assert.ErrorIs(t, Authorize(client, domain.RoleAdmin), ErrForbidden)
	assert.NoError(t, Authorize(admin, domain.RoleClient))
	assert.NoError(t, Authorize(admin, domain.RoleAdmin))
	assert.ErrorIs(t, Authorize(VerifiedClaims{}, domain.RoleClient), ErrForbidden)
}

func TestAuthorize_RefreshClaimsNeverAuthorize(t *testing.T) {
	issuer, _ := newTestIssuer(t)
	pair, err := issuer.Issue(domain.Principal{ID: "p-1", Roles: []domain.Role{domain.RoleAdmin}}, issuer.Now())
	require.NoError(t, err)
	refresh, err := issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)

	assert.ErrorIs(t, Authorize(refresh, domain.RoleAdmin), ErrForbidden)
}

func TestVerifiedClaims_RolesIsACopy(t *testing.T) {
	issuer, _ := newTestIssuer(t)
	claims := claimsFor(t, issuer, domain.RoleClient)

	roles := claims.Roles()
	roles[0] = domain.RoleAdmin

	assert.False(t, claims.HasRole(domain.RoleAdmin))
	assert.ErrorIs(t, Authorize(claims, domain.RoleAdmin), ErrForbidden)
}

func newGateApp(issuer *Issuer) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	mw := NewAuthMiddleware(issuer)
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/me", mw.Handle, RequireAuthenticated(), func(c *fiber.Ctx) error {
		claims, _ := ClaimsFromContext(c)
		return c.SendString(claims.Subject())
	})
	app.Get("/maybe", mw.Optional, func(c *fiber.Ctx) error {
		if _, ok := ClaimsFromContext(c); ok {
			return c.SendString("authenticated")
		}
		return c.SendString("anonymous")
	})
	return app
}

func TestRoleGateMiddleware(t *testing.T) {
	issuer, _ := newTestIssuer(t)
	app := newGateApp(issuer)

	clientPair, err := issuer.Issue(domain.Principal{ID: "c-1", Roles: []domain.Role{domain.RoleClient}}, issuer.Now())
	require.NoError(t, err)
	adminPair, err := issuer.Issue(domain.Principal{ID: "a-1", Roles: []domain.Role{domain.RoleAdmin}}, issuer.Now())
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/admin", "", http.StatusUnauthorized},
		{"malformed header", "/admin", "Token abc", http.StatusUnauthorized},
		{"garbage token", "/admin", "Bearer abc", http.StatusUnauthorized},
		{"refresh token as bearer", "/admin", "Bearer " + clientPair.RefreshToken, http.StatusUnauthorized},
		{"client forbidden", "/admin", "Bearer " + clientPair.AccessToken, http.StatusForbidden},
		{"admin allowed", "/admin", "Bearer " + adminPair.AccessToken, http.StatusNoContent},
		{"me", "/me", "Bearer " + clientPair.AccessToken, http.StatusOK},
		{"optional anonymous", "/maybe", "", http.StatusOK},
		{"optional invalid still rejected", "/maybe", "Bearer abc", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
