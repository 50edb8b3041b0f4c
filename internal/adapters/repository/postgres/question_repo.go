package postgres

import (
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	cache "github.com/patrickmn/go-cache"
)

const corpusCacheKey = "questions:all"

// corpusCacheTTL keeps repeated matching operations from re-reading the whole
// corpus on every message. Writes invalidate the cache immediately.
const corpusCacheTTL = 30 * time.Second

type QuestionRepo struct {
	pool  *pgxpool.Pool
	cache *cache.Cache
}

var _ repository.QuestionRepository = (*QuestionRepo)(nil)

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{
		pool:  pool,
		cache: cache.New(corpusCacheTTL, time.Minute),
	}
}

func (r *QuestionRepo) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS question_topics (
			id BIGSERIAL PRIMARY KEY,
			topic TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id BIGSERIAL PRIMARY KEY,
			topic_id BIGINT REFERENCES question_topics(id) ON DELETE SET NULL,
			question TEXT NOT NULL,
			answer BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic_id);`,
	}
	for _, q := range queries {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (r *QuestionRepo) List(ctx context.Context) ([]schema.Question, error) {
	if cached, ok := r.cache.Get(corpusCacheKey); ok {
		return cached.([]schema.Question), nil
	}

	const query = `
	SELECT id, topic_id, question, answer, created_at
	FROM questions
	ORDER BY id;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]schema.Question, 0, 64)
	for rows.Next() {
		var q schema.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Question, &q.Answer, &q.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.SetDefault(corpusCacheKey, items)
	return items, nil
}

func (r *QuestionRepo) Create(ctx context.Context, q schema.Question) (schema.Question, error) {
	const query = `
	INSERT INTO questions (topic_id, question, answer)
	VALUES ($1, $2, $3)
	RETURNING id, topic_id, question, answer, created_at;
	`
	var out schema.Question
	if err := r.pool.QueryRow(ctx, query, q.TopicID, q.Question, q.Answer).Scan(
		&out.ID,
		&out.TopicID,
		&out.Question,
		&out.Answer,
		&out.CreatedAt,
	); err != nil {
		return schema.Question{}, err
	}
	r.cache.Delete(corpusCacheKey)
	return out, nil
}
