package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// UserRepository defines persistence access for credential records.
type UserRepository interface {
	// Create stores the principal and its credential record atomically.
	Create(ctx context.Context, principal *domain.Principal, user *domain.User) error
	GetByPrincipalID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, principal *domain.Principal, user *domain.User) error {
	const query = `
        INSERT INTO users (principal_id, name, email, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`

	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := (&identityQueries{db: tx}).Save(ctx, principal); err != nil {
			return err
		}
		user.PrincipalID = principal.ID
		if err := tx.QueryRow(ctx, query,
			user.PrincipalID,
			user.Name,
			user.Email,
			user.PasswordHash,
		).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
			return fmt.Errorf("insert user: %w", mapPgError(err))
		}
		return nil
	})
}

func (r *userRepository) GetByPrincipalID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT principal_id, name, email, password_hash, created_at, updated_at
        FROM users WHERE principal_id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT principal_id, name, email, password_hash, created_at, updated_at
        FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.PrincipalID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &user, nil
}
