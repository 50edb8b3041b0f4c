package repository

import (
	"KharitonBot/internal/domain/schema"
	"context"
)

// SessionRepository stores one mutable record per user, keyed by user id.
// Put must be atomic per key so concurrent messages from the same user cannot
// lose state or scratch updates. DeleteExpired is a maintenance sweep; the
// session service re-validates expiry lazily regardless.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (schema.Session, bool, error)
	Put(ctx context.Context, userID int64, s schema.Session) error
	Delete(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}
