package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/api/dto"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/observability"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/service"
	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

// AdminHandler serves admin-only endpoints. Routes are gated by auth.RequireRole.
type AdminHandler struct {
	auth    *service.AuthService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{auth: authService, metrics: metrics}
}

// UpdateRoles handles PUT /admin/principals/:id/roles.
func (h *AdminHandler) UpdateRoles(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	roles := make([]domain.Role, len(req.Roles))
	for i, r := range req.Roles {
		roles[i] = domain.Role(r)
	}

	principal, err := h.auth.UpdateRoles(c.UserContext(), claims, c.Params("id"), roles)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponse(*principal)})
}

// Metrics handles GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
