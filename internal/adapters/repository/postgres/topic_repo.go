package postgres

import (
	"KharitonBot/internal/domain/errorz"
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	cache "github.com/patrickmn/go-cache"
)

const topicsCacheKey = "topics:all"

// defaultTopics seed the reference label set at startup. The fallback label
// must always exist.
var defaultTopics = []string{
	"Бог и религия",
	"НЛО и пришельцы",
	"Космос и вселенная",
	"Наука",
	"Животные",
	schema.TopicFallbackLabel,
}

type TopicRepo struct {
	pool  *pgxpool.Pool
	cache *cache.Cache
}

var _ repository.TopicRepository = (*TopicRepo)(nil)

func NewTopicRepo(pool *pgxpool.Pool) *TopicRepo {
	return &TopicRepo{
		pool:  pool,
		cache: cache.New(5*time.Minute, time.Minute),
	}
}

func (r *TopicRepo) Seed(ctx context.Context) error {
	const query = `INSERT INTO question_topics (topic) VALUES ($1) ON CONFLICT (topic) DO NOTHING;`
	for _, label := range defaultTopics {
		if _, err := r.pool.Exec(ctx, query, label); err != nil {
			return fmt.Errorf("seed topic %q: %w", label, err)
		}
	}
	return nil
}

func (r *TopicRepo) List(ctx context.Context) ([]schema.Topic, error) {
	if cached, ok := r.cache.Get(topicsCacheKey); ok {
		return cached.([]schema.Topic), nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, topic FROM question_topics ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]schema.Topic, 0, 16)
	for rows.Next() {
		var t schema.Topic
		if err := rows.Scan(&t.ID, &t.Topic); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.SetDefault(topicsCacheKey, items)
	return items, nil
}

func (r *TopicRepo) GetByLabel(ctx context.Context, label string) (schema.Topic, error) {
	var t schema.Topic
	err := r.pool.QueryRow(ctx, `SELECT id, topic FROM question_topics WHERE topic = $1;`, label).
		Scan(&t.ID, &t.Topic)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schema.Topic{}, errorz.ErrNotFound
		}
		return schema.Topic{}, err
	}
	return t, nil
}
