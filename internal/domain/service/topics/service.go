// Package topics assigns an incoming question to the closest known topic
// label using the completion model.
package topics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"KharitonBot/internal/domain/errorz"
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
)

type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Service struct {
	topics repository.TopicRepository
	ai     Completer
	log    *zap.Logger
}

func New(topics repository.TopicRepository, ai Completer, log *zap.Logger) *Service {
	return &Service{topics: topics, ai: ai, log: log}
}

// Classify asks the model to pick exactly one of the known labels. A nil
// result means no label matched; callers treat that as "uncategorized" and
// never invent a label themselves.
func (s *Service) Classify(ctx context.Context, question string) (*schema.Topic, error) {
	known, err := s.topics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	if len(known) == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(known))
	for _, t := range known {
		labels = append(labels, t.Topic)
	}
	prompt := fmt.Sprintf("К какой из представленных категорий ты причислил бы этот вопрос: %q? "+
		"Отвечай одним из вариантов списка, ничего дополнительно не объясняй.\n\n"+
		"Список категорий: %s", question, strings.Join(labels, ", "))

	reply, err := s.ai.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	// Keep only the first line and strip quotes; models tend to elaborate.
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	reply = strings.Trim(strings.TrimSpace(reply), "\"'«»")
	if reply == "" {
		return nil, nil
	}

	for i := range known {
		if strings.EqualFold(known[i].Topic, reply) {
			return &known[i], nil
		}
	}

	s.log.Warn("model reply matched no known topic",
		zap.String("question", question),
		zap.String("reply", reply))
	return nil, nil
}

// ClassifyWithFallback resolves the fallback topic when classification finds
// nothing or the model is unavailable; adding a question must not fail just
// because it could not be categorized.
func (s *Service) ClassifyWithFallback(ctx context.Context, question string) (*schema.Topic, error) {
	topic, err := s.Classify(ctx, question)
	if err != nil {
		var upstream *errorz.UpstreamError
		if !errors.As(err, &upstream) {
			return nil, err
		}
		s.log.Error("topic classification degraded, using fallback",
			zap.String("question", question),
			zap.Error(err))
	}
	if topic != nil {
		return topic, nil
	}

	fallback, err := s.topics.GetByLabel(ctx, schema.TopicFallbackLabel)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fallback, nil
}
