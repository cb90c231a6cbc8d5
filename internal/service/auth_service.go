package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/config"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/events"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/guest"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
)

var (
	// ErrEmailTaken is returned by Register for an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrGuestTarget is returned when roles are assigned to a guest principal.
	ErrGuestTarget = errors.New("guest principals cannot be assigned roles")

	// ErrInvalidRoles is returned for an empty or unknown role set.
	ErrInvalidRoles = errors.New("at least one valid non-guest role is required")
)

// AuthResult is what login and registration hand back to the caller.
type AuthResult struct {
	User      *domain.User
	Principal domain.Principal
	Tokens    domain.TokenPair
	Merge     guest.MergeResult
}

// AuthService coordinates registration, login, rotation and role management.
type AuthService struct {
	users      repository.UserRepository
	identities repository.IdentityRepository
	issuer     *auth.Issuer
	bridge     *guest.Bridge
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Users      repository.UserRepository
	Identities repository.IdentityRepository
	Issuer     *auth.Issuer
	Bridge     *guest.Bridge
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.Users,
		identities: deps.Identities,
		issuer:     deps.Issuer,
		bridge:     deps.Bridge,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a client account, folds in the caller's guest cart and signs a pair.
func (s *AuthService) Register(ctx context.Context, name, email, password, anonID string) (*AuthResult, error) {
	const op = "service.AuthService.Register"

	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	principal := &domain.Principal{ID: uuid.NewString(), Roles: []domain.Role{domain.RoleClient}}
	user := &domain.User{
		PrincipalID:  principal.ID,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, principal, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.complete(ctx, user, *principal, anonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, events.New(events.EventUserRegistered, principal.ID, nil))
	return result, nil
}

// Login verifies credentials, merges the guest cart bound to anonID, and signs a pair.
// Unknown email and wrong password are indistinguishable to the caller. A storage failure
// during the merge fails the login; retrying is safe.
func (s *AuthService) Login(ctx context.Context, email, password, anonID string) (*AuthResult, error) {
	const op = "service.AuthService.Login"

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	principal, err := s.identities.FindByID(ctx, user.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.complete(ctx, user, *principal, anonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, events.New(events.EventUserLoggedIn, principal.ID, events.UserLoggedInPayload{
		Reparented: result.Merge.Reparented,
		Discarded:  result.Merge.Discarded,
	}))
	return result, nil
}

func (s *AuthService) complete(ctx context.Context, user *domain.User, principal domain.Principal, anonID string) (*AuthResult, error) {
	merge, err := s.mergeGuest(ctx, anonID, principal.ID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issuer.Issue(principal, s.issuer.Now())
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Principal: principal, Tokens: tokens, Merge: merge}, nil
}

func (s *AuthService) mergeGuest(ctx context.Context, anonID, userID string) (guest.MergeResult, error) {
	if anonID == "" || s.bridge == nil {
		return guest.MergeResult{}, nil
	}
	guestID, ok, err := s.bridge.ResolveGuest(ctx, anonID)
	if err != nil {
		return guest.MergeResult{}, err
	}
	if !ok {
		return guest.MergeResult{}, nil
	}

	merge, err := s.bridge.MergeOnLogin(ctx, guestID, userID)
	if err != nil {
		return guest.MergeResult{}, err
	}
	if err := s.bridge.ForgetAnonymous(ctx, anonID); err != nil {
		s.logger.Warn("forget anonymous id", zap.Error(err))
	}
	if merge.GuestFound {
		s.publish(ctx, events.New(events.EventGuestMerged, userID, events.GuestMergedPayload{
			GuestID:    guestID,
			Reparented: merge.Reparented,
			Discarded:  merge.Discarded,
		}))
	}
	return merge, nil
}

// Refresh exchanges a refresh token for a new pair. Any failure is auth.ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	pair, err := s.issuer.Rotate(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if claims, err := s.issuer.ParseAccess(pair.AccessToken); err == nil {
		s.publish(ctx, events.New(events.EventTokensRotated, claims.Subject(), nil))
	}
	return pair, nil
}

// Me returns the principal described by verified access-token claims.
func (s *AuthService) Me(claims auth.VerifiedClaims) domain.Principal {
	return claims.Principal()
}

// UpdateRoles replaces the role set of a registered principal. Tokens already issued,
// and pairs rotated from them, keep the old roles until the holder logs in again.
func (s *AuthService) UpdateRoles(ctx context.Context, actor auth.VerifiedClaims, principalID string, roles []domain.Role) (*domain.Principal, error) {
	const op = "service.AuthService.UpdateRoles"

	normalized := domain.NormalizeRoles(roles)
	if len(normalized) == 0 || len(normalized) != len(dedupe(roles)) {
		return nil, ErrInvalidRoles
	}
	for _, r := range normalized {
		if r == domain.RoleGuest {
			return nil, ErrInvalidRoles
		}
	}

	var updated *domain.Principal
	err := s.identities.InTx(ctx, func(ctx context.Context, store repository.IdentityStore) error {
		p, err := store.LockPrincipal(ctx, principalID)
		if err != nil {
			return err
		}
		if p.IsGuest() {
			return ErrGuestTarget
		}
		p.Roles = normalized
		if err := store.Save(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.New(events.EventRolesChanged, principalID, events.RolesChangedPayload{
		ChangedBy: actor.Subject(),
		Roles:     domain.RoleStrings(updated.Roles),
	}))
	return updated, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func dedupe(roles []domain.Role) map[domain.Role]struct{} {
	set := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}
