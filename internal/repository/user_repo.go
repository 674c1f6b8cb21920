package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-crud-api/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.Identity, error) {
	var u model.Identity
	err := r.pool.QueryRow(ctx,
		`SELECT username, password_hash, role, created_at
		 FROM users WHERE lower(username) = lower($1)`, strings.TrimSpace(username)).
		Scan(&u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Identity{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// EnsureUser inserts the identity unless the username is already taken.
func (r *UserRepository) EnsureUser(ctx context.Context, u model.Identity) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO users (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (username) DO NOTHING`,
		u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
