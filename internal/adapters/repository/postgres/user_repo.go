package postgres

import (
	"KharitonBot/internal/domain/errorz"
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Migrate(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS telegram_users (
		user_id BIGINT PRIMARY KEY,
		chat_id BIGINT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID int64) (schema.User, error) {
	const query = `SELECT user_id, chat_id, name, role FROM telegram_users WHERE user_id = $1;`
	var (
		u       schema.User
		rawRole string
	)
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&u.UserID, &u.ChatID, &u.Name, &rawRole); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schema.User{}, errorz.ErrNotFound
		}
		return schema.User{}, err
	}
	role, err := schema.ParseRole(rawRole)
	if err != nil {
		return schema.User{}, fmt.Errorf("user %d: %w", userID, err)
	}
	u.Role = role
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u schema.User) (schema.User, error) {
	if _, err := schema.ParseRole(string(u.Role)); err != nil {
		return schema.User{}, err
	}
	const query = `
	INSERT INTO telegram_users (user_id, chat_id, name, role)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE SET chat_id = EXCLUDED.chat_id, name = EXCLUDED.name
	RETURNING user_id, chat_id, name, role;
	`
	var (
		out     schema.User
		rawRole string
	)
	if err := r.pool.QueryRow(ctx, query, u.UserID, u.ChatID, u.Name, string(u.Role)).Scan(
		&out.UserID, &out.ChatID, &out.Name, &rawRole,
	); err != nil {
		return schema.User{}, err
	}
	role, err := schema.ParseRole(rawRole)
	if err != nil {
		return schema.User{}, err
	}
	out.Role = role
	return out, nil
}

func (r *UserRepo) UpdateName(ctx context.Context, userID int64, name string) error {
	_, err := r.pool.Exec(ctx, `UPDATE telegram_users SET name = $1 WHERE user_id = $2;`, name, userID)
	return err
}
