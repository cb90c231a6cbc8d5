package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/api/dto"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/service"
	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

const minPasswordLength = 8

// AuthHandler exposes login, registration, refresh and identity endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie GuestCookie
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie GuestCookie) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	if len(req.Password) < minPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}

	result, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password, h.cookie.read(c))
	if err != nil {
		return mapError(err)
	}
	if result.Merge.GuestFound {
		h.cookie.clear(c)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(result)})
}

// Login handles POST /auth/login. A guest cart bound to the request's cookie is merged
// into the account and the cookie is cleared.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	anonID := h.cookie.read(c)
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, anonID)
	if err != nil {
		return mapError(err)
	}
	if anonID != "" {
		h.cookie.clear(c)
	}

	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refresh_token required", nil)
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.RefreshResponse{Tokens: dto.NewTokenPairResponse(pair)}})
}

// Me handles GET /auth/me. The answer comes from the verified token alone.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		Principal: dto.NewPrincipalResponse(h.auth.Me(claims)),
		ExpiresAt: claims.ExpiresAt(),
	}})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	resp := dto.AuthResponse{
		Principal: dto.NewPrincipalResponse(result.Principal),
		Tokens:    dto.NewTokenPairResponse(result.Tokens),
	}
	if result.User != nil {
		resp.User = &dto.UserResponse{Name: result.User.Name, Email: result.User.Email}
	}
	if result.Merge.GuestFound {
		resp.Merge = &dto.MergeResponse{Reparented: result.Merge.Reparented, Discarded: result.Merge.Discarded}
	}
	return resp
}
