package repository

import (
	"KharitonBot/internal/domain/schema"
	"context"
)

type UserRepository interface {
	Get(ctx context.Context, userID int64) (schema.User, error)
	Create(ctx context.Context, u schema.User) (schema.User, error)
	UpdateName(ctx context.Context, userID int64, name string) error
}
