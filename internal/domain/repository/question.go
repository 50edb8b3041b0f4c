package repository

import (
	"KharitonBot/internal/domain/schema"
	"context"
)

// QuestionRepository owns the question corpus. The corpus is read fully per
// matching operation; it stays in the low thousands.
type QuestionRepository interface {
	List(ctx context.Context) ([]schema.Question, error)
	Create(ctx context.Context, q schema.Question) (schema.Question, error)
}

type TopicRepository interface {
	List(ctx context.Context) ([]schema.Topic, error)
	GetByLabel(ctx context.Context, label string) (schema.Topic, error)
}
