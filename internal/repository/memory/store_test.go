package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
)

func seedPrincipal(t *testing.T, s *Store, id string, roles ...domain.Role) {
	t.Helper()
	require.NoError(t, s.Save(context.Background(), &domain.Principal{ID: id, Roles: roles}))
}

func TestStore_PrincipalCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.FindByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	seedPrincipal(t, s, "p-1", domain.RoleClient, domain.RoleClient)
	p, err := s.FindByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleClient}, p.Roles)
	assert.False(t, p.CreatedAt.IsZero())

	require.NoError(t, s.Delete(ctx, "p-1"))
	require.NoError(t, s.Delete(ctx, "p-1"), "delete is idempotent")
	_, err = s.FindByID(ctx, "p-1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_CartLines(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedPrincipal(t, s, "g-1", domain.RoleGuest)
	seedPrincipal(t, s, "u-1", domain.RoleClient)

	require.NoError(t, s.SaveCartLine(ctx, &domain.CartLine{OwnerPrincipalID: "g-1", ServiceID: "S2", Quantity: 1}))
	require.NoError(t, s.SaveCartLine(ctx, &domain.CartLine{OwnerPrincipalID: "g-1", ServiceID: "S1", Quantity: 1}))
	require.Error(t, s.SaveCartLine(ctx, &domain.CartLine{OwnerPrincipalID: "g-1", ServiceID: "S3", Quantity: 2}))
	require.ErrorIs(t, s.SaveCartLine(ctx, &domain.CartLine{OwnerPrincipalID: "nobody", ServiceID: "S1", Quantity: 1}), repository.ErrNotFound)

	lines, err := s.FindCartLinesByOwner(ctx, "g-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "S1", lines[0].ServiceID)

	require.NoError(t, s.ReparentCartLine(ctx, "g-1", "u-1", "S1"))
	require.NoError(t, s.ReparentCartLine(ctx, "g-1", "u-1", "S1"), "second reparent is a no-op")

	lines, err = s.FindCartLinesByOwner(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	require.NoError(t, s.SaveCartLine(ctx, &domain.CartLine{OwnerPrincipalID: "g-1", ServiceID: "S1", Quantity: 1}))
	require.ErrorIs(t, s.ReparentCartLine(ctx, "g-1", "u-1", "S1"), repository.ErrAlreadyExists)

	require.NoError(t, s.Delete(ctx, "g-1"))
	lines, err = s.FindCartLinesByOwner(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, lines, "lines cascade with their owner")
}

func TestStore_InTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedPrincipal(t, s, "g-1", domain.RoleGuest)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx repository.IdentityStore) error {
		require.NoError(t, tx.SaveCartLine(ctx, &domain.CartLine{OwnerPrincipalID: "g-1", ServiceID: "S1", Quantity: 1}))
		require.NoError(t, tx.Delete(ctx, "g-1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.FindByID(ctx, "g-1")
	require.NoError(t, err)
	lines, err := s.FindCartLinesByOwner(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p := &domain.Principal{ID: "u-1", Roles: []domain.Role{domain.RoleClient}}
	u := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, s.Create(ctx, p, u))
	assert.Equal(t, "u-1", u.PrincipalID)

	dup := &domain.User{Name: "Ada 2", Email: "ada@example.com", PasswordHash: "hash"}
	require.ErrorIs(t, s.Create(ctx, &domain.Principal{ID: "u-2", Roles: []domain.Role{domain.RoleClient}}, dup), repository.ErrAlreadyExists)
	_, err := s.FindByID(ctx, "u-2")
	require.ErrorIs(t, err, repository.ErrNotFound, "failed create leaves no principal behind")

	got, err := s.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	got, err = s.GetByPrincipalID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
}
