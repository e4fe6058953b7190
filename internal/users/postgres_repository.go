package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/poschuler/remix-local-auth/internal/database"
)

const uniqueViolation = "23505"

const (
	findByEmailQuery = `
		SELECT id_user, email, hashed_password
		FROM users
		WHERE email = $1`

	existsByEmailQuery = `
		SELECT 1
		FROM users
		WHERE email = $1
		LIMIT 1`

	insertQuery = `
		INSERT INTO users (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id_user, email`
)

// PostgresRepository は PostgreSQL 上の Repository 実装です。
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	found, err := r.db.QueryRow(ctx, findByEmailQuery, []any{email}, &u.ID, &u.Email, &u.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &u, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	found, err := r.db.QueryRow(ctx, existsByEmailQuery, []any{email}, &one)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, email, hashedPassword string) (Projection, error) {
	var p Projection
	found, err := r.db.QueryRow(ctx, insertQuery, []any{email, hashedPassword}, &p.ID, &p.Email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Projection{}, fmt.Errorf("insert user: %w", errors.Join(ErrEmailTaken, err))
		}
		return Projection{}, fmt.Errorf("insert user: %w", err)
	}
	if !found {
		return Projection{}, errors.New("insert user: no row returned")
	}
	return p, nil
}
