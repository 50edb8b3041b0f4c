package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/khariton")
	t.Setenv("OPENAI_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, SessionStorePostgres, cfg.SessionStore)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, 2000, cfg.OpenAIMaxTokens)
	require.InDelta(t, 0.7, cfg.StrongMatch, 1e-9)
	require.InDelta(t, 0.4, cfg.WeakMatch, 1e-9)
	require.InDelta(t, 0.3, cfg.SimilarMatch, 1e-9)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, "@every 10m", cfg.SweepSchedule)
	require.Empty(t, cfg.AdminIDs)
	require.False(t, cfg.Debug)
}

func TestLoadMissingToken(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	require.ErrorContains(t, err, "BOT_TOKEN")
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("MATCH_STRONG_THRESHOLD", "0.8")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, SessionStoreRedis, cfg.SessionStore)
	require.Equal(t, "localhost:6380", cfg.RedisAddr)
	require.InDelta(t, 0.8, cfg.StrongMatch, 1e-9)
	require.Equal(t, 15*time.Minute, cfg.SessionTTL)
	require.True(t, cfg.Debug)
}

func TestLoadRejectsUnknownSessionStore(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_STORE", "memcached")

	_, err := Load()
	require.ErrorContains(t, err, "SESSION_STORE")
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_WEAK_THRESHOLD", "lots")

	_, err := Load()
	require.ErrorContains(t, err, "MATCH_WEAK_THRESHOLD")
}

func TestParseAdminIDs(t *testing.T) {
	ids := parseAdminIDs("1, 42 ,,junk, 99")
	require.Len(t, ids, 3)
	require.Contains(t, ids, int64(1))
	require.Contains(t, ids, int64(42))
	require.Contains(t, ids, int64(99))
}
