package domain

import "time"

// MaxLineQuantity caps how many units of a single service a cart may hold.
const MaxLineQuantity = 1

// CartLine is one booked service in a principal's cart.
type CartLine struct {
	OwnerPrincipalID string
	ServiceID        string
	Quantity         int
	UpdatedAt        time.Time
}

// ClampQuantity maps a requested quantity onto the allowed range [0, MaxLineQuantity].
func ClampQuantity(q int) int {
	if q <= 0 {
		return 0
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}
