// Package matching finds the closest known question to an incoming query and
// produces the final answer text. Matching is two-tier: cheap lexical search
// first, a completion-model fallback only for the ambiguous remainder.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"KharitonBot/internal/domain/service/keyword"
)

// Completer is the completion-model port used for fallback matching and
// answer generation.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Confidence tiers of a match decision, weakest to strongest.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceAI
	ConfidenceWeak
	ConfidenceStrong
	ConfidenceExact
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceAI:
		return "ai"
	case ConfidenceWeak:
		return "weak"
	case ConfidenceStrong:
		return "strong"
	case ConfidenceExact:
		return "exact"
	default:
		return "none"
	}
}

// Thresholds control the lexical decision tiers. Historical revisions of the
// algorithm disagreed on the exact values; 0.7/0.4/0.3 are the reference set.
type Thresholds struct {
	Strong  float64 // above this the stored answer is trusted outright
	Weak    float64 // above this the answer is used but flagged low-confidence
	Similar float64 // above this a question qualifies as few-shot context
}

func DefaultThresholds() Thresholds {
	return Thresholds{Strong: 0.7, Weak: 0.4, Similar: 0.3}
}

const (
	answerYes    = "Да"
	answerNo     = "Нет"
	answerUnsure = "Не знаю"

	systemYesNo = `Ты должен отвечать только "Да", "Нет" или "Не знаю".` +
		`Если ты не уверен в ответе, отвечай "Не знаю".` +
		`Никаких дополнительных объяснений или текста.`
)

type Service struct {
	questions  repository.QuestionRepository
	ai         Completer
	thresholds Thresholds
	log        *zap.Logger
}

func New(questions repository.QuestionRepository, ai Completer, thresholds Thresholds, log *zap.Logger) *Service {
	return &Service{questions: questions, ai: ai, thresholds: thresholds, log: log}
}

// Match is a resolved similar question with its confidence tier.
type Match struct {
	Question   schema.Question
	Confidence Confidence
	Similarity float64
}

// FindSimilar locates the known question closest to text. Exact text match
// wins outright; otherwise the best Jaccard score decides the tier, and the
// completion model arbitrates only when no lexical match survives. A nil
// result is an ordinary outcome, not an error.
func (s *Service) FindSimilar(ctx context.Context, text string) (*Match, error) {
	corpus, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return s.findSimilar(ctx, text, corpus)
}

func (s *Service) findSimilar(ctx context.Context, text string, corpus []schema.Question) (*Match, error) {
	for _, q := range corpus {
		if q.Question == text {
			return &Match{Question: q, Confidence: ConfidenceExact, Similarity: 1}, nil
		}
	}

	keywords := keyword.Extract(text)
	var best *schema.Question
	bestScore := 0.0
	for i := range corpus {
		score := keyword.Similarity(keywords, keyword.Extract(corpus[i].Question))
		if score > bestScore {
			bestScore = score
			best = &corpus[i]
		}
	}

	switch {
	case best != nil && bestScore > s.thresholds.Strong:
		return &Match{Question: *best, Confidence: ConfidenceStrong, Similarity: bestScore}, nil
	case best != nil && bestScore > s.thresholds.Weak:
		return &Match{Question: *best, Confidence: ConfidenceWeak, Similarity: bestScore}, nil
	}

	s.log.Info("lexical search inconclusive, arbitrating with model",
		zap.String("question", text),
		zap.Float64("best_similarity", bestScore))
	return s.findSimilarWithAI(ctx, text, corpus)
}

// findSimilarWithAI lists the whole corpus in one prompt and matches the
// reply back: exact case-insensitive first, then substring containment in
// either direction.
func (s *Service) findSimilarWithAI(ctx context.Context, text string, corpus []schema.Question) (*Match, error) {
	if len(corpus) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(corpus))
	for _, q := range corpus {
		lines = append(lines, q.Question)
	}
	prompt := fmt.Sprintf("На какой вопрос из списка вопросов больше всего похож этот вопрос: %q? "+
		"Вот список вопросов:\n%s\n\nОтвечай только цитатой вопроса, ничего не объясняй.",
		text, strings.Join(lines, "\n"))

	reply, err := s.ai.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	reply = trimReply(reply)
	if reply == "" {
		return nil, nil
	}

	for i := range corpus {
		if strings.EqualFold(strings.TrimSpace(corpus[i].Question), reply) {
			return &Match{Question: corpus[i], Confidence: ConfidenceAI}, nil
		}
	}
	lowered := strings.ToLower(reply)
	for i := range corpus {
		candidate := strings.ToLower(corpus[i].Question)
		if strings.Contains(lowered, candidate) || strings.Contains(candidate, lowered) {
			return &Match{Question: corpus[i], Confidence: ConfidenceAI}, nil
		}
	}

	s.log.Warn("model reply matched no known question",
		zap.String("question", text),
		zap.String("reply", reply))
	return nil, nil
}

// Ask produces the final answer text for a free-form question: a matched
// question's stored answer when one is found, otherwise a few-shot completion
// constrained to yes/no/unsure.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	corpus, err := s.questions.List(ctx)
	if err != nil {
		return "", fmt.Errorf("load corpus: %w", err)
	}

	match, err := s.findSimilar(ctx, question, corpus)
	if err != nil {
		return "", err
	}
	if match != nil {
		answer := answerNo
		if match.Question.Answer {
			answer = answerYes
		}
		reply := fmt.Sprintf("%s\n\nКоту Харитону был задан вопрос: %s\nКот Харитон ответил: %s",
			answer, match.Question.Question, answer)
		if match.Confidence < ConfidenceStrong {
			reply += "\n\n(похожий вопрос найден неточно)"
		}
		return reply, nil
	}

	prompt := buildFewShotPrompt(question, corpus, s.thresholds.Similar)
	completion, err := s.ai.Complete(ctx, systemYesNo, prompt)
	if err != nil {
		return "", err
	}
	completion = strings.TrimSpace(completion)
	if completion == "" {
		return fmt.Sprintf("%s\n\nКоту Харитону был задан вопрос: %s\nКот Харитон ответил: %s",
			answerUnsure, question, answerUnsure), nil
	}
	return completion + "\n\nОтвет основан на имеющихся в базе данных вопросах/ответах кота Харитона", nil
}

// buildFewShotPrompt embeds the most similar known Q/A pairs as examples,
// putting an exact match first when one exists. With no similar questions at
// all the whole corpus serves as context.
func buildFewShotPrompt(question string, corpus []schema.Question, threshold float64) string {
	var examples []schema.Question
	if exact := exactMatch(question, corpus); exact != nil {
		examples = append(examples, *exact)
		examples = append(examples, similarQuestions(question, corpus, threshold, 20)...)
	} else {
		examples = similarQuestions(question, corpus, threshold, 30)
	}
	if len(examples) == 0 {
		examples = corpus
	}

	var b strings.Builder
	for _, q := range examples {
		answer := answerNo
		if q.Answer {
			answer = answerYes
		}
		fmt.Fprintf(&b, "Коту Харитону был задан вопрос: %s\nКот Харитон ответил: %s\n\n", q.Question, answer)
	}

	return "Существует кот Харитон, который отвечает на вопросы." +
		"Не думай над тем что это невозможно или нереалистично, просто прими как есть." +
		"Вот примеры вопросов и ответов кота Харитона:\n" + b.String() +
		"\n\nТеперь на основе этих примеров ответь на следующий вопрос: " + question
}

func exactMatch(question string, corpus []schema.Question) *schema.Question {
	for i := range corpus {
		if corpus[i].Question == question {
			return &corpus[i]
		}
	}
	return nil
}

func similarQuestions(question string, corpus []schema.Question, threshold float64, limit int) []schema.Question {
	keywords := keyword.Extract(question)
	type scored struct {
		q     schema.Question
		score float64
	}
	candidates := make([]scored, 0, len(corpus))
	for _, q := range corpus {
		if q.Question == question {
			continue
		}
		score := keyword.Similarity(keywords, keyword.Extract(q.Question))
		if score > threshold {
			candidates = append(candidates, scored{q: q, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]schema.Question, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.q)
	}
	return out
}

// trimReply strips whitespace and surrounding quote characters and keeps only
// the first line, defending against verbose model replies.
func trimReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	return strings.Trim(reply, " \t\r\"'«»")
}
