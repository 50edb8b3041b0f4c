package topics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"KharitonBot/internal/domain/errorz"
	"KharitonBot/internal/domain/schema"
)

type memTopics struct {
	items   []schema.Topic
	listErr error
}

func (m *memTopics) List(_ context.Context) ([]schema.Topic, error) {
	return m.items, m.listErr
}

func (m *memTopics) GetByLabel(_ context.Context, label string) (schema.Topic, error) {
	for _, t := range m.items {
		if t.Topic == label {
			return t, nil
		}
	}
	return schema.Topic{}, errorz.ErrNotFound
}

type fakeCompleter struct {
	fn    func(system, prompt string) (string, error)
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	return f.fn(system, prompt)
}

func knownTopics() []schema.Topic {
	return []schema.Topic{
		{ID: 1, Topic: "Бог и религия"},
		{ID: 2, Topic: "НЛО и пришельцы"},
		{ID: 3, Topic: schema.TopicFallbackLabel},
	}
}

func TestClassifyMatchesLabel(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, prompt string) (string, error) {
		require.Contains(t, prompt, "Список категорий")
		require.Contains(t, prompt, "Бог и религия")
		return "Бог и религия", nil
	}}
	svc := New(&memTopics{items: knownTopics()}, ai, zap.NewNop())

	topic, err := svc.Classify(context.Background(), "Существует ли Бог?")
	require.NoError(t, err)
	require.NotNil(t, topic)
	require.Equal(t, int64(1), topic.ID)
}

func TestClassifyTrimsVerboseReply(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return "«НЛО и пришельцы»\nПотому что речь о тарелках.", nil
	}}
	svc := New(&memTopics{items: knownTopics()}, ai, zap.NewNop())

	topic, err := svc.Classify(context.Background(), "НЛО прилетали?")
	require.NoError(t, err)
	require.NotNil(t, topic)
	require.Equal(t, "НЛО и пришельцы", topic.Topic)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return strings.ToUpper("Бог и религия"), nil
	}}
	svc := New(&memTopics{items: knownTopics()}, ai, zap.NewNop())

	topic, err := svc.Classify(context.Background(), "Есть ли Бог?")
	require.NoError(t, err)
	require.NotNil(t, topic)
	require.Equal(t, int64(1), topic.ID)
}

func TestClassifyUnknownLabelYieldsNil(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return "Политика", nil
	}}
	svc := New(&memTopics{items: knownTopics()}, ai, zap.NewNop())

	topic, err := svc.Classify(context.Background(), "Кто победит на выборах?")
	require.NoError(t, err)
	require.Nil(t, topic)
}

func TestClassifyEmptyTopicListSkipsModel(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return "что угодно", nil
	}}
	svc := New(&memTopics{}, ai, zap.NewNop())

	topic, err := svc.Classify(context.Background(), "Есть ли Бог?")
	require.NoError(t, err)
	require.Nil(t, topic)
	require.Zero(t, ai.calls)
}

func TestClassifyWithFallbackUsesCatchAll(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return "Политика", nil
	}}
	svc := New(&memTopics{items: knownTopics()}, ai, zap.NewNop())

	topic, err := svc.ClassifyWithFallback(context.Background(), "Кто победит на выборах?")
	require.NoError(t, err)
	require.NotNil(t, topic)
	require.Equal(t, schema.TopicFallbackLabel, topic.Topic)
}

func TestClassifyWithFallbackSurvivesUpstreamError(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return "", &errorz.UpstreamError{Status: 503, Body: "unavailable"}
	}}
	svc := New(&memTopics{items: knownTopics()}, ai, zap.NewNop())

	topic, err := svc.ClassifyWithFallback(context.Background(), "Есть ли Бог?")
	require.NoError(t, err)
	require.NotNil(t, topic)
	require.Equal(t, schema.TopicFallbackLabel, topic.Topic)
}

func TestClassifyWithFallbackPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := New(&memTopics{listErr: boom}, &fakeCompleter{}, zap.NewNop())

	_, err := svc.ClassifyWithFallback(context.Background(), "Есть ли Бог?")
	require.ErrorIs(t, err, boom)
}

func TestClassifyWithFallbackNoCatchAllTopic(t *testing.T) {
	ai := &fakeCompleter{fn: func(_, _ string) (string, error) {
		return "Политика", nil
	}}
	topics := &memTopics{items: []schema.Topic{{ID: 1, Topic: "Бог и религия"}}}
	svc := New(topics, ai, zap.NewNop())

	topic, err := svc.ClassifyWithFallback(context.Background(), "Кто победит?")
	require.NoError(t, err)
	require.Nil(t, topic)
}
