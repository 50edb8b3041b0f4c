package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

type Config struct {
	BotToken    string
	PostgresDSN string

	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64
	OpenAITimeout     time.Duration

	AdminIDs map[int64]struct{}

	StrongMatch  float64
	WeakMatch    float64
	SimilarMatch float64

	SessionTTL    time.Duration
	SweepSchedule string

	Debug bool
}

func Load() (Config, error) {
	cfg := Config{
		BotToken:      strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		PostgresDSN:   strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SessionStore:  valueOrDefault("SESSION_STORE", SessionStorePostgres),
		RedisAddr:     valueOrDefault("REDIS_ADDR", "redis:6379"),
		RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL: valueOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   valueOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AdminIDs:      parseAdminIDs(os.Getenv("ADMIN_IDS")),
		SweepSchedule: valueOrDefault("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		Debug:         strings.TrimSpace(os.Getenv("DEBUG")) == "1",
	}

	var err error
	if cfg.RedisDB, err = intOrDefault("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.OpenAIMaxTokens, err = intOrDefault("OPENAI_MAX_TOKENS", 2000); err != nil {
		return Config{}, err
	}
	if cfg.OpenAITemperature, err = floatOrDefault("OPENAI_TEMPERATURE", 0.1); err != nil {
		return Config{}, err
	}
	if cfg.StrongMatch, err = floatOrDefault("MATCH_STRONG_THRESHOLD", 0.7); err != nil {
		return Config{}, err
	}
	if cfg.WeakMatch, err = floatOrDefault("MATCH_WEAK_THRESHOLD", 0.4); err != nil {
		return Config{}, err
	}
	if cfg.SimilarMatch, err = floatOrDefault("MATCH_SIMILAR_THRESHOLD", 0.3); err != nil {
		return Config{}, err
	}
	if cfg.OpenAITimeout, err = durationOrDefault("OPENAI_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationOrDefault("SESSION_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.OpenAIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.SessionStore != SessionStorePostgres && cfg.SessionStore != SessionStoreRedis {
		return Config{}, fmt.Errorf("invalid SESSION_STORE: %q", cfg.SessionStore)
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intOrDefault(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func floatOrDefault(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseAdminIDs(raw string) map[int64]struct{} {
	res := make(map[int64]struct{})
	for _, p := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			continue
		}
		res[v] = struct{}{}
	}
	return res
}
