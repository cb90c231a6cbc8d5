package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/config"
)

// GuestCookie writes and reads the anonymous id cookie.
type GuestCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// NewGuestCookie builds a cookie policy from config.
func NewGuestCookie(cfg config.GuestConfig) GuestCookie {
	return GuestCookie{Name: cfg.CookieName, TTL: cfg.SessionTTL(), Secure: cfg.CookieSecure}
}

func (g GuestCookie) read(c *fiber.Ctx) string {
	return c.Cookies(g.Name)
}

func (g GuestCookie) set(c *fiber.Ctx, anonID string) {
	c.Cookie(&fiber.Cookie{
		Name:     g.Name,
		Value:    anonID,
		Path:     "/",
		Expires:  time.Now().Add(g.TTL),
		HTTPOnly: true,
		Secure:   g.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (g GuestCookie) clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   g.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// requestScope adapts a fiber request to guest.Scope.
type requestScope struct {
	c      *fiber.Ctx
	cookie GuestCookie
}

func (s requestScope) PrincipalID() (string, bool) {
	claims, ok := auth.ClaimsFromContext(s.c)
	if !ok {
		return "", false
	}
	return claims.Subject(), true
}

func (s requestScope) AnonymousID() (string, bool) {
	id := s.cookie.read(s.c)
	return id, id != ""
}

func (s requestScope) SetAnonymousID(anonID string) {
	s.cookie.set(s.c, anonID)
}
