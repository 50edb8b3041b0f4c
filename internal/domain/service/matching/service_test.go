package matching

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

type memQuestions struct {
	items   []schema.Question
	listErr error
}

func (m *memQuestions) List(_ context.Context) ([]schema.Question, error) {
	return m.items, m.listErr
}

func (m *memQuestions) Create(_ context.Context, q schema.Question) (schema.Question, error) {
	q.ID = int64(len(m.items) + 1)
	m.items = append(m.items, q)
	return q, nil
}

type fakeCompleter struct {
	fn    func(system, prompt string) (string, error)
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	if f.fn == nil {
		return "", errors.New("unexpected completion call")
	}
	return f.fn(system, prompt)
}

func corpus() []schema.Question {
	return []schema.Question{
		{ID: 1, Question: "Существует ли Бог?", Answer: true},
		{ID: 2, Question: "Есть ли жизнь в космосе?", Answer: true},
		{ID: 3, Question: "НЛО прилетали на Землю?", Answer: false},
	}
}

func newService(repo *memQuestions, ai *fakeCompleter) *Service {
	return New(repo, ai, DefaultThresholds(), zap.NewNop())
}

func TestFindSimilarExactMatch(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{items: corpus()}, ai)

	match, err := svc.FindSimilar(context.Background(), "Существует ли Бог?")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, ConfidenceExact, match.Confidence)
	require.Equal(t, int64(1), match.Question.ID)
	require.Zero(t, ai.calls, "exact match must not consult the model")
}

func TestFindSimilarStrongMatch(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{items: corpus()}, ai)

	// Keywords {бог} on both sides: Jaccard 1.0.
	match, err := svc.FindSimilar(context.Background(), "Есть ли Бог?")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, ConfidenceStrong, match.Confidence)
	require.Equal(t, int64(1), match.Question.ID)
	require.Zero(t, ai.calls)
}

func TestFindSimilarWeakMatch(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{items: corpus()}, ai)

	// Keywords {правда, бог} vs {бог}: Jaccard 0.5 — weak tier.
	match, err := svc.FindSimilar(context.Background(), "Правда ли Бог?")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, ConfidenceWeak, match.Confidence)
	require.Equal(t, int64(1), match.Question.ID)
	require.InDelta(t, 0.5, match.Similarity, 1e-9)
}

func TestFindSimilarEscalatesToModel(t *testing.T) {
	ai := &fakeCompleter{fn: func(system, prompt string) (string, error) {
		require.Contains(t, prompt, "список вопросов")
		require.Contains(t, prompt, "Существует ли Бог?")
		return "Существует ли Бог?", nil
	}}
	svc := newService(&memQuestions{items: corpus()}, ai)

	// No important word: keyword set is empty, lexical search yields nothing.
	match, err := svc.FindSimilar(context.Background(), "Какой сегодня день?")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, ConfidenceAI, match.Confidence)
	require.Equal(t, int64(1), match.Question.ID)
	require.Equal(t, 1, ai.calls)
}

func TestFindSimilarModelReplySubstring(t *testing.T) {
	ai := &fakeCompleter{fn: func(system, prompt string) (string, error) {
		return `Больше всего похоже на "НЛО прилетали на Землю?"`, nil
	}}
	svc := newService(&memQuestions{items: corpus()}, ai)

	match, err := svc.FindSimilar(context.Background(), "Какой сегодня день?")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, int64(3), match.Question.ID)
}

func TestFindSimilarModelReplyUnknown(t *testing.T) {
	ai := &fakeCompleter{fn: func(system, prompt string) (string, error) {
		return "Ни на один из списка", nil
	}}
	svc := newService(&memQuestions{items: corpus()}, ai)

	match, err := svc.FindSimilar(context.Background(), "Какой сегодня день?")
	require.NoError(t, err)
	require.Nil(t, match)
}

func TestFindSimilarEmptyCorpus(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{}, ai)

	match, err := svc.FindSimilar(context.Background(), "Существует ли Бог?")
	require.NoError(t, err)
	require.Nil(t, match)
	require.Zero(t, ai.calls)
}

func TestFindSimilarUpstreamErrorPropagates(t *testing.T) {
	ai := &fakeCompleter{fn: func(system, prompt string) (string, error) {
		return "", &errorz.UpstreamError{Status: 503, Body: "unavailable"}
	}}
	svc := newService(&memQuestions{items: corpus()}, ai)

	_, err := svc.FindSimilar(context.Background(), "Какой сегодня день?")
	var upstream *errorz.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, 503, upstream.Status)
}

func TestAskExactMatchUsesStoredAnswer(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{items: corpus()}, ai)

	answer, err := svc.Ask(context.Background(), "Существует ли Бог?")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(answer, "Да"))
	require.Contains(t, answer, "Существует ли Бог?")
	require.NotContains(t, answer, "неточно")
	require.Zero(t, ai.calls)
}

func TestAskWeakMatchFlaggedLowConfidence(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{items: corpus()}, ai)

	answer, err := svc.Ask(context.Background(), "Правда ли Бог?")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(answer, "Да"))
	require.Contains(t, answer, "неточно")
}

func TestAskFallsBackToFewShotCompletion(t *testing.T) {
	var prompts []string
	var systems []string
	ai := &fakeCompleter{fn: func(system, prompt string) (string, error) {
		systems = append(systems, system)
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return "Ни на один не похож", nil // list-match attempt fails
		}
		return "Не знаю", nil
	}}
	svc := newService(&memQuestions{items: corpus()}, ai)

	answer, err := svc.Ask(context.Background(), "Какой сегодня день?")
	require.NoError(t, err)
	require.Equal(t, 2, ai.calls)
	require.Contains(t, systems[1], "Не знаю")
	require.Contains(t, prompts[1], "кот Харитон")
	require.True(t, strings.HasPrefix(answer, "Не знаю"))
	require.Contains(t, answer, "Ответ основан")
}

func TestAskUpstreamErrorPropagates(t *testing.T) {
	ai := &fakeCompleter{fn: func(system, prompt string) (string, error) {
		return "", &errorz.UpstreamError{Status: 500, Body: "boom"}
	}}
	svc := newService(&memQuestions{items: corpus()}, ai)

	_, err := svc.Ask(context.Background(), "Какой сегодня день?")
	var upstream *errorz.UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestAskIdempotentOnUnchangedCorpus(t *testing.T) {
	ai := &fakeCompleter{}
	svc := newService(&memQuestions{items: corpus()}, ai)

	first, err := svc.Ask(context.Background(), "Существует ли Бог?")
	require.NoError(t, err)
	second, err := svc.Ask(context.Background(), "Существует ли Бог?")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBuildFewShotPromptPrioritizesExactMatch(t *testing.T) {
	prompt := buildFewShotPrompt("Существует ли Бог?", corpus(), 0.3)

	require.Contains(t, prompt, "Существует ли Бог?")
	first := strings.Index(prompt, "Существует ли Бог?")
	other := strings.Index(prompt, "Есть ли жизнь в космосе?")
	if other >= 0 {
		require.Less(t, first, other)
	}
}

func TestTrimReply(t *testing.T) {
	require.Equal(t, "Существует ли Бог?", trimReply("  \"Существует ли Бог?\"\nпояснение"))
	require.Equal(t, "ответ", trimReply("«ответ»"))
	require.Equal(t, "", trimReply("  \n"))
}
