package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// IdentityStore is the persistence collaborator for principals and the cart lines they own.
type IdentityStore interface {
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	Save(ctx context.Context, principal *domain.Principal) error
	Delete(ctx context.Context, id string) error
	FindCartLinesByOwner(ctx context.Context, ownerID string) ([]domain.CartLine, error)

	// LockPrincipal loads the principal and holds a row lock on it until the transaction ends.
	LockPrincipal(ctx context.Context, id string) (*domain.Principal, error)
	SaveCartLine(ctx context.Context, line *domain.CartLine) error
	// DeleteCartLine and ReparentCartLine are no-ops when the line is not there.
	DeleteCartLine(ctx context.Context, ownerID, serviceID string) error
	ReparentCartLine(ctx context.Context, fromOwnerID, toOwnerID, serviceID string) error
}

// IdentityRepository adds transactions on top of IdentityStore.
type IdentityRepository interface {
	IdentityStore
	InTx(ctx context.Context, fn func(ctx context.Context, store IdentityStore) error) error
}

type identityRepository struct {
	pool *pgxpool.Pool
	identityQueries
}

type identityQueries struct {
	db dbtx
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool, identityQueries: identityQueries{db: pool}}
}

func (r *identityRepository) InTx(ctx context.Context, fn func(ctx context.Context, store IdentityStore) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, &identityQueries{db: tx})
	})
}

func (q *identityQueries) FindByID(ctx context.Context, id string) (*domain.Principal, error) {
	const query = `SELECT id, roles, created_at FROM principals WHERE id=$1`
	return q.scanPrincipal(q.db.QueryRow(ctx, query, id))
}

func (q *identityQueries) LockPrincipal(ctx context.Context, id string) (*domain.Principal, error) {
	const query = `SELECT id, roles, created_at FROM principals WHERE id=$1 FOR UPDATE`
	return q.scanPrincipal(q.db.QueryRow(ctx, query, id))
}

func (q *identityQueries) scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var (
		p     domain.Principal
		roles []string
	)
	if err := row.Scan(&p.ID, &roles, &p.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	p.Roles = domain.RolesFromStrings(roles)
	return &p, nil
}

func (q *identityQueries) Save(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO principals (id, roles)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET roles = EXCLUDED.roles
        RETURNING created_at`

	roles := domain.RoleStrings(domain.NormalizeRoles(principal.Roles))
	if err := q.db.QueryRow(ctx, query, principal.ID, roles).Scan(&principal.CreatedAt); err != nil {
		return fmt.Errorf("save principal: %w", mapPgError(err))
	}
	return nil
}

func (q *identityQueries) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM principals WHERE id=$1`
	if _, err := q.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete principal: %w", mapPgError(err))
	}
	return nil
}

func (q *identityQueries) FindCartLinesByOwner(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	const query = `
        SELECT owner_principal_id, service_id, quantity, updated_at
        FROM cart_lines WHERE owner_principal_id=$1
        ORDER BY service_id`

	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.OwnerPrincipalID, &line.ServiceID, &line.Quantity, &line.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (q *identityQueries) SaveCartLine(ctx context.Context, line *domain.CartLine) error {
	const query = `
        INSERT INTO cart_lines (owner_principal_id, service_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (owner_principal_id, service_id)
        DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
        RETURNING updated_at`

	if err := q.db.QueryRow(ctx, query, line.OwnerPrincipalID, line.ServiceID, line.Quantity).Scan(&line.UpdatedAt); err != nil {
		return fmt.Errorf("save cart line: %w", mapPgError(err))
	}
	return nil
}

func (q *identityQueries) DeleteCartLine(ctx context.Context, ownerID, serviceID string) error {
	const query = `DELETE FROM cart_lines WHERE owner_principal_id=$1 AND service_id=$2`
	if _, err := q.db.Exec(ctx, query, ownerID, serviceID); err != nil {
		return fmt.Errorf("delete cart line: %w", mapPgError(err))
	}
	return nil
}

func (q *identityQueries) ReparentCartLine(ctx context.Context, fromOwnerID, toOwnerID, serviceID string) error {
	const query = `
        UPDATE cart_lines SET owner_principal_id=$2, updated_at=NOW()
        WHERE owner_principal_id=$1 AND service_id=$3`

	if _, err := q.db.Exec(ctx, query, fromOwnerID, toOwnerID, serviceID); err != nil {
		return fmt.Errorf("reparent cart line: %w", mapPgError(err))
	}
	return nil
}
