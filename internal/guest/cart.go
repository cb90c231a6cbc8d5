package guest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
)

// Lines lists the cart of ownerID.
func (b *Bridge) Lines(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	lines, err := b.store.FindCartLinesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("guest.Bridge.Lines: %w", err)
	}
	return lines, nil
}

// AddLine puts one unit of serviceID in the owner's cart. Adding twice keeps quantity 1.
func (b *Bridge) AddLine(ctx context.Context, ownerID, serviceID string) (domain.CartLine, error) {
	return b.SetQuantity(ctx, ownerID, serviceID, 1)
}

// SetQuantity clamps quantity into {0,1}; zero or less removes the line.
func (b *Bridge) SetQuantity(ctx context.Context, ownerID, serviceID string, quantity int) (domain.CartLine, error) {
	const op = "guest.Bridge.SetQuantity"

	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return domain.CartLine{}, ErrInvalidServiceID
	}
	quantity = domain.ClampQuantity(quantity)
	line := domain.CartLine{OwnerPrincipalID: ownerID, ServiceID: serviceID, Quantity: quantity}

	err := b.withOwnerLock(ctx, ownerID, func(ctx context.Context, s repository.IdentityStore) error {
		if quantity == 0 {
			return s.DeleteCartLine(ctx, ownerID, serviceID)
		}
		return s.SaveCartLine(ctx, &line)
	})
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("%s: %w", op, err)
	}
	return line, nil
}

// RemoveLine deletes serviceID from the owner's cart.
func (b *Bridge) RemoveLine(ctx context.Context, ownerID, serviceID string) error {
	_, err := b.SetQuantity(ctx, ownerID, serviceID, 0)
	return err
}

// withOwnerLock runs fn in a transaction holding the owner's row lock, the same lock a
// merge takes, so a cart write cannot land on a guest that a merge already deleted.
func (b *Bridge) withOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context, s repository.IdentityStore) error) error {
	return b.store.InTx(ctx, func(ctx context.Context, s repository.IdentityStore) error {
		if _, err := s.LockPrincipal(ctx, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOwnerGone
			}
			return err
		}
		return fn(ctx, s)
	})
}
