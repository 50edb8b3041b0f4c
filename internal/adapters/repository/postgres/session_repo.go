package postgres

import (
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepo stores one row per user. Put is a single upsert, which
// serializes concurrent writes for the same user at the row level.
type SessionRepo struct {
	pool *pgxpool.Pool
}

var _ repository.SessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_sessions (
			telegram_user_id BIGINT PRIMARY KEY,
			state TEXT NOT NULL DEFAULT '',
			data JSONB NOT NULL DEFAULT '{}',
			expires_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_expires ON user_sessions(expires_at);`,
	}
	for _, q := range queries {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, userID int64) (schema.Session, bool, error) {
	const query = `SELECT state, data, expires_at FROM user_sessions WHERE telegram_user_id = $1;`
	var (
		state   string
		rawData []byte
	)
	s := schema.NewSession(userID)
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&state, &rawData, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schema.Session{}, false, nil
		}
		return schema.Session{}, false, err
	}
	s.State = schema.SessionState(state)
	if len(rawData) > 0 {
		if err := json.Unmarshal(rawData, &s.Data); err != nil {
			return schema.Session{}, false, fmt.Errorf("decode session data: %w", err)
		}
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	return s, true, nil
}

func (r *SessionRepo) Put(ctx context.Context, userID int64, s schema.Session) error {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}
	const query = `
	INSERT INTO user_sessions (telegram_user_id, state, data, expires_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (telegram_user_id)
	DO UPDATE SET state = EXCLUDED.state, data = EXCLUDED.data,
		expires_at = EXCLUDED.expires_at, updated_at = NOW();
	`
	_, err = r.pool.Exec(ctx, query, userID, string(s.State), data, s.ExpiresAt)
	return err
}

func (r *SessionRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE telegram_user_id = $1;`, userID)
	return err
}

func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at IS NOT NULL AND expires_at < NOW();`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
