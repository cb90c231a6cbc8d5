// Package memory provides an in-process implementation of the repository interfaces.
// It backs the API when no Postgres DSN is configured and is used by package tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
)

type lineKey struct {
	owner   string
	service string
}

type state struct {
	principals map[string]domain.Principal
	lines      map[lineKey]domain.CartLine
	users      map[string]domain.User
}

func (s state) clone() state {
	out := state{
		principals: make(map[string]domain.Principal, len(s.principals)),
		lines:      make(map[lineKey]domain.CartLine, len(s.lines)),
		users:      make(map[string]domain.User, len(s.users)),
	}
	for k, v := range s.principals {
		v.Roles = append([]domain.Role(nil), v.Roles...)
		out.principals[k] = v
	}
	for k, v := range s.lines {
		out.lines[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

// Store keeps principals, cart lines and users in maps guarded by one mutex.
// InTx holds the mutex for the whole callback, which serializes transactions and
// gives LockPrincipal its row-lock semantics; a failed callback restores the snapshot.
type Store struct {
	mu    sync.Mutex
	st    state
	clock func() time.Time
}

var (
	_ repository.IdentityRepository = (*Store)(nil)
	_ repository.UserRepository     = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		st: state{
			principals: map[string]domain.Principal{},
			lines:      map[lineKey]domain.CartLine{},
			users:      map[string]domain.User{},
		},
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, store repository.IdentityStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &view{st: &s.st, clock: s.clock}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) with(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: &s.st, clock: s.clock})
}

func (s *Store) FindByID(ctx context.Context, id string) (p *domain.Principal, err error) {
	err = s.with(func(v *view) error { p, err = v.FindByID(ctx, id); return err })
	return p, err
}

func (s *Store) LockPrincipal(ctx context.Context, id string) (p *domain.Principal, err error) {
	err = s.with(func(v *view) error { p, err = v.LockPrincipal(ctx, id); return err })
	return p, err
}

func (s *Store) Save(ctx context.Context, principal *domain.Principal) error {
	return s.with(func(v *view) error { return v.Save(ctx, principal) })
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.with(func(v *view) error { return v.Delete(ctx, id) })
}

func (s *Store) FindCartLinesByOwner(ctx context.Context, ownerID string) (lines []domain.CartLine, err error) {
	err = s.with(func(v *view) error { lines, err = v.FindCartLinesByOwner(ctx, ownerID); return err })
	return lines, err
}

func (s *Store) SaveCartLine(ctx context.Context, line *domain.CartLine) error {
	return s.with(func(v *view) error { return v.SaveCartLine(ctx, line) })
}

func (s *Store) DeleteCartLine(ctx context.Context, ownerID, serviceID string) error {
	return s.with(func(v *view) error { return v.DeleteCartLine(ctx, ownerID, serviceID) })
}

func (s *Store) ReparentCartLine(ctx context.Context, fromOwnerID, toOwnerID, serviceID string) error {
	return s.with(func(v *view) error { return v.ReparentCartLine(ctx, fromOwnerID, toOwnerID, serviceID) })
}

// Create stores a principal and its user record, enforcing unique emails.
func (s *Store) Create(ctx context.Context, principal *domain.Principal, user *domain.User) error {
	return s.InTx(ctx, func(ctx context.Context, store repository.IdentityStore) error {
		for _, u := range s.st.users {
			if u.Email == user.Email {
				return repository.ErrAlreadyExists
			}
		}
		if err := store.Save(ctx, principal); err != nil {
			return err
		}
		now := s.clock()
		user.PrincipalID = principal.ID
		user.CreatedAt, user.UpdatedAt = now, now
		s.st.users[principal.ID] = *user
		return nil
	})
}

func (s *Store) GetByPrincipalID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// view operates on state without locking; the caller holds Store.mu.
type view struct {
	st    *state
	clock func() time.Time
}

func (v *view) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	p, ok := v.st.principals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Roles = append([]domain.Role(nil), p.Roles...)
	return &p, nil
}

func (v *view) LockPrincipal(ctx context.Context, id string) (*domain.Principal, error) {
	return v.FindByID(ctx, id)
}

func (v *view) Save(_ context.Context, principal *domain.Principal) error {
	if principal.ID == "" {
		return fmt.Errorf("save principal: empty id")
	}
	if existing, ok := v.st.principals[principal.ID]; ok {
		principal.CreatedAt = existing.CreatedAt
	} else {
		principal.CreatedAt = v.clock()
	}
	stored := *principal
	stored.Roles = domain.NormalizeRoles(principal.Roles)
	v.st.principals[principal.ID] = stored
	return nil
}

func (v *view) Delete(_ context.Context, id string) error {
	delete(v.st.principals, id)
	// cart_lines cascade on principal delete
	for k := range v.st.lines {
		if k.owner == id {
			delete(v.st.lines, k)
		}
	}
	delete(v.st.users, id)
	return nil
}

func (v *view) FindCartLinesByOwner(_ context.Context, ownerID string) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0)
	for k, line := range v.st.lines {
		if k.owner == ownerID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ServiceID < lines[j].ServiceID })
	return lines, nil
}

func (v *view) SaveCartLine(_ context.Context, line *domain.CartLine) error {
	if _, ok := v.st.principals[line.OwnerPrincipalID]; !ok {
		return fmt.Errorf("save cart line: %w", repository.ErrNotFound)
	}
	if line.Quantity < 0 || line.Quantity > domain.MaxLineQuantity {
		return fmt.Errorf("save cart line: quantity %d out of range", line.Quantity)
	}
	line.UpdatedAt = v.clock()
	v.st.lines[lineKey{owner: line.OwnerPrincipalID, service: line.ServiceID}] = *line
	return nil
}

func (v *view) DeleteCartLine(_ context.Context, ownerID, serviceID string) error {
	delete(v.st.lines, lineKey{owner: ownerID, service: serviceID})
	return nil
}

func (v *view) ReparentCartLine(_ context.Context, fromOwnerID, toOwnerID, serviceID string) error {
	from := lineKey{owner: fromOwnerID, service: serviceID}
	line, ok := v.st.lines[from]
	if !ok {
		return nil
	}
	if _, ok := v.st.principals[toOwnerID]; !ok {
		return fmt.Errorf("reparent cart line: %w", repository.ErrNotFound)
	}
	to := lineKey{owner: toOwnerID, service: serviceID}
	if _, exists := v.st.lines[to]; exists {
		return fmt.Errorf("reparent cart line: %w", repository.ErrAlreadyExists)
	}
	delete(v.st.lines, from)
	line.OwnerPrincipalID = toOwnerID
	line.UpdatedAt = v.clock()
	v.st.lines[to] = line
	return nil
}
