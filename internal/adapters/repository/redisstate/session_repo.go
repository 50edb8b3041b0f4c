// Package redisstate keeps per-user sessions in Redis. The key TTL doubles
// as the sweep: Redis drops expired sessions on its own, and the session
// service still re-validates expires_at lazily on read.
package redisstate

import (
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyTTL outlives the logical expiry so a lazy reset can still observe the
// stale record instead of silently losing it mid-read.
const keyTTL = 24 * time.Hour

type SessionRepo struct {
	client *redis.Client
}

var _ repository.SessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Get(ctx context.Context, userID int64) (schema.Session, bool, error) {
	v, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return schema.Session{}, false, nil
	}
	if err != nil {
		return schema.Session{}, false, err
	}

	var s schema.Session
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return schema.Session{}, false, err
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.UserID = userID
	return s, true, nil
}

func (r *SessionRepo) Put(ctx context.Context, userID int64, s schema.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(userID), b, keyTTL).Err()
}

func (r *SessionRepo) Delete(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, sessionKey(userID)).Err()
}

// DeleteExpired is a no-op: Redis evicts keys by TTL itself.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}
