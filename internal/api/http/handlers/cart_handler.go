package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/api/dto"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/guest"
	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

// CartHandler serves the cart for both authenticated callers and guests.
type CartHandler struct {
	bridge *guest.Bridge
	cookie GuestCookie
}

// NewCartHandler constructs handler.
func NewCartHandler(bridge *guest.Bridge, cookie GuestCookie) *CartHandler {
	return &CartHandler{bridge: bridge, cookie: cookie}
}

// Get handles GET /cart. It never creates a guest.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	ownerID, ok, err := h.existingOwner(c)
	if err != nil {
		return mapError(err)
	}
	if !ok {
		return c.JSON(fiber.Map{"data": dto.NewCartResponse("", nil)})
	}
	lines, err := h.bridge.Lines(c.UserContext(), ownerID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(ownerID, lines)})
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req dto.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ownerID, err := h.bridge.EnsureGuest(c.UserContext(), requestScope{c: c, cookie: h.cookie})
	if err != nil {
		return mapError(err)
	}
	line, err := h.bridge.AddLine(c.UserContext(), ownerID, req.ServiceID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCartLineResponse(line)})
}

// SetQuantity handles PUT /cart/items/:serviceID.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req dto.SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Quantity == nil {
		return apperrors.NewValidationError("quantity required", map[string]any{"field": "quantity"})
	}

	ownerID, err := h.bridge.EnsureGuest(c.UserContext(), requestScope{c: c, cookie: h.cookie})
	if err != nil {
		return mapError(err)
	}
	line, err := h.bridge.SetQuantity(c.UserContext(), ownerID, c.Params("serviceID"), *req.Quantity)
	if err != nil {
		return mapError(err)
	}
	if line.Quantity == 0 {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(fiber.Map{"data": dto.NewCartLineResponse(line)})
}

// RemoveItem handles DELETE /cart/items/:serviceID.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	ownerID, ok, err := h.existingOwner(c)
	if err != nil {
		return mapError(err)
	}
	if ok {
		if err := h.bridge.RemoveLine(c.UserContext(), ownerID, c.Params("serviceID")); err != nil {
			return mapError(err)
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *CartHandler) existingOwner(c *fiber.Ctx) (string, bool, error) {
	scope := requestScope{c: c, cookie: h.cookie}
	if id, ok := scope.PrincipalID(); ok {
		return id, true, nil
	}
	anonID, ok := scope.AnonymousID()
	if !ok {
		return "", false, nil
	}
	return h.bridge.ResolveGuest(c.UserContext(), anonID)
}
