package dto

import (
	"time"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// AddCartItemRequest adds one unit of a service.
type AddCartItemRequest struct {
	ServiceID string `json:"service_id"`
}

// SetQuantityRequest sets a line's quantity. Values above one are clamped.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CartLineResponse is one cart line.
type CartLineResponse struct {
	ServiceID string    `json:"service_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartResponse lists a cart.
type CartResponse struct {
	OwnerID string             `json:"owner_id,omitempty"`
	Lines   []CartLineResponse `json:"lines"`
}

func NewCartLineResponse(l domain.CartLine) CartLineResponse {
	return CartLineResponse{ServiceID: l.ServiceID, Quantity: l.Quantity, UpdatedAt: l.UpdatedAt}
}

func NewCartResponse(ownerID string, lines []domain.CartLine) CartResponse {
	out := CartResponse{OwnerID: ownerID, Lines: make([]CartLineResponse, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, NewCartLineResponse(l))
	}
	return out
}
