// Package guest lets unauthenticated visitors build a cart under an ephemeral guest
// principal and folds that cart into the real account when they log in.
package guest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
)

var (
	// ErrOwnerGone means the cart owner was deleted, typically by a concurrent merge.
	ErrOwnerGone = errors.New("cart owner no longer exists")

	// ErrNotGuest is returned when a merge source is not a guest principal.
	ErrNotGuest = errors.New("merge source is not a guest principal")

	// ErrInvalidServiceID is returned for an empty service id.
	ErrInvalidServiceID = errors.New("service id is required")
)

// Scope is the request-scoped view the bridge needs: who is authenticated and the
// anonymous id carried by the request.
type Scope interface {
	PrincipalID() (string, bool)
	AnonymousID() (string, bool)
	SetAnonymousID(anonID string)
}

// MergeResult reports what a merge did.
type MergeResult struct {
	Reparented int
	Discarded  int
	GuestFound bool
}

// Bridge creates guest principals and reconciles their carts at login.
type Bridge struct {
	store    repository.IdentityRepository
	sessions Sessions
	logger   *zap.Logger
	newID    func() string
}

// NewBridge builds a bridge.
func NewBridge(store repository.IdentityRepository, sessions Sessions, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{store: store, sessions: sessions, logger: logger, newID: uuid.NewString}
}

// EnsureGuest returns the authenticated principal when there is one, otherwise the
// guest principal bound to the request's anonymous id, creating both lazily.
func (b *Bridge) EnsureGuest(ctx context.Context, scope Scope) (string, error) {
	const op = "guest.Bridge.EnsureGuest"

	if id, ok := scope.PrincipalID(); ok && id != "" {
		return id, nil
	}

	if anonID, ok := scope.AnonymousID(); ok && anonID != "" {
		principalID, err := b.sessions.Lookup(ctx, anonID)
		switch {
		case err == nil:
			if _, err := b.store.FindByID(ctx, principalID); err == nil {
				return principalID, nil
			} else if !errors.Is(err, repository.ErrNotFound) {
				return "", fmt.Errorf("%s: %w", op, err)
			}
			b.logger.Debug("guest principal vanished; issuing a new one", zap.String("principal_id", principalID))
		case !errors.Is(err, ErrSessionNotFound):
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	return b.createGuest(ctx, scope)
}

func (b *Bridge) createGuest(ctx context.Context, scope Scope) (string, error) {
	const op = "guest.Bridge.createGuest"

	principal := &domain.Principal{ID: b.newID(), Roles: []domain.Role{domain.RoleGuest}}
	if err := b.store.Save(ctx, principal); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	anonID := b.newID()
	if err := b.sessions.Put(ctx, anonID, principal.ID); err != nil {
		_ = b.store.Delete(ctx, principal.ID)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	scope.SetAnonymousID(anonID)

	b.logger.Info("guest principal created", zap.String("principal_id", principal.ID))
	return principal.ID, nil
}

// ResolveGuest returns the guest principal id for anonID without creating one.
func (b *Bridge) ResolveGuest(ctx context.Context, anonID string) (string, bool, error) {
	principalID, err := b.sessions.Lookup(ctx, anonID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return principalID, true, nil
}

// ForgetAnonymous drops the anonymous-id mapping once its guest has been merged.
func (b *Bridge) ForgetAnonymous(ctx context.Context, anonID string) error {
	return b.sessions.Forget(ctx, anonID)
}

// MergeOnLogin moves the guest's cart lines to userID and deletes the guest principal.
// When both own a line for the same service the user's line wins. Every step is
// idempotent and the whole merge runs in one transaction holding row locks on both
// principals, so a retry after a failure, or a repeat call after success, converges
// to the same state.
func (b *Bridge) MergeOnLogin(ctx context.Context, guestID, userID string) (MergeResult, error) {
	const op = "guest.Bridge.MergeOnLogin"

	var result MergeResult
	if guestID == "" || guestID == userID {
		return result, nil
	}

	err := b.store.InTx(ctx, func(ctx context.Context, s repository.IdentityStore) error {
		result = MergeResult{}

		locked, err := lockInOrder(ctx, s, guestID, userID)
		if err != nil {
			return err
		}
		guest, ok := locked[guestID]
		if !ok {
			return nil
		}
		if _, ok := locked[userID]; !ok {
			return fmt.Errorf("user principal %s: %w", userID, repository.ErrNotFound)
		}
		if !guest.IsGuest() {
			return ErrNotGuest
		}
		result.GuestFound = true

		guestLines, err := s.FindCartLinesByOwner(ctx, guestID)
		if err != nil {
			return err
		}
		userLines, err := s.FindCartLinesByOwner(ctx, userID)
		if err != nil {
			return err
		}
		owned := make(map[string]struct{}, len(userLines))
		for _, line := range userLines {
			owned[line.ServiceID] = struct{}{}
		}

		for _, line := range guestLines {
			if _, exists := owned[line.ServiceID]; exists {
				if err := s.DeleteCartLine(ctx, guestID, line.ServiceID); err != nil {
					return err
				}
				result.Discarded++
				continue
			}
			if err := s.ReparentCartLine(ctx, guestID, userID, line.ServiceID); err != nil {
				return err
			}
			owned[line.ServiceID] = struct{}{}
			result.Reparented++
		}

		return s.Delete(ctx, guestID)
	})
	if err != nil {
		return MergeResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if result.GuestFound {
		b.logger.Info("guest cart merged",
			zap.String("guest_id", guestID),
			zap.String("user_id", userID),
			zap.Int("reparented", result.Reparented),
			zap.Int("discarded", result.Discarded))
	}
	return result, nil
}

// lockInOrder row-locks the given principals in id order so concurrent merges cannot
// deadlock. Missing principals are left out of the result.
func lockInOrder(ctx context.Context, s repository.IdentityStore, a, b string) (map[string]*domain.Principal, error) {
	ids := []string{a, b}
	if b < a {
		ids = []string{b, a}
	}
	locked := make(map[string]*domain.Principal, 2)
	for _, id := range ids {
		p, err := s.LockPrincipal(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		locked[id] = p
	}
	return locked, nil
}
