// Package dialog drives the per-user conversation state machine. It resolves
// the principal, loads the session, dispatches commands and flow input, and
// returns outbound text as plain data; it performs no transport I/O itself.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"KharitonBot/internal/domain/errorz"
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
	"KharitonBot/internal/domain/service/matching"
	"KharitonBot/internal/domain/service/session"
	"KharitonBot/internal/domain/service/topics"
)

type Service struct {
	users     repository.UserRepository
	questions repository.QuestionRepository
	sessions  *session.Service
	matcher   *matching.Service
	topics    *topics.Service
	adminIDs  map[int64]struct{}
	log       *zap.Logger
}

func New(
	users repository.UserRepository,
	questions repository.QuestionRepository,
	sessions *session.Service,
	matcher *matching.Service,
	topicSvc *topics.Service,
	adminIDs map[int64]struct{},
	log *zap.Logger,
) *Service {
	if adminIDs == nil {
		adminIDs = map[int64]struct{}{}
	}
	return &Service{
		users:     users,
		questions: questions,
		sessions:  sessions,
		matcher:   matcher,
		topics:    topicSvc,
		adminIDs:  adminIDs,
		log:       log,
	}
}

// HandleMessage processes one inbound message and returns the reply. Every
// internal failure is converted to a non-technical message here; technical
// detail goes to the operator log only. An empty reply text means nothing
// should be sent.
func (s *Service) HandleMessage(ctx context.Context, in schema.Inbound) (schema.Outbound, error) {
	text := strings.TrimSpace(in.Text)

	user, err := s.resolveUser(ctx, in)
	if err != nil {
		s.log.Error("resolve user", zap.Int64("user_id", in.UserID), zap.Error(err))
		return s.reply(in, msgInternalError), nil
	}

	// Commands always win: a slash command pre-empts any pending flow.
	if strings.HasPrefix(text, "/") {
		return s.handleCommand(ctx, in, user, text)
	}

	sess, err := s.sessions.Get(ctx, in.UserID)
	if err != nil {
		s.log.Error("load session", zap.Int64("user_id", in.UserID), zap.Error(err))
		return s.reply(in, msgInternalError), nil
	}

	switch sess.State {
	case schema.StateWaitingQuestion:
		return s.handleAskInput(ctx, in, text)
	case schema.StateAddWaitQuestion:
		return s.handleAddQuestionInput(ctx, in, text)
	case schema.StateAddWaitAnswer:
		return s.handleAddAnswerInput(ctx, in, sess, text)
	}

	// No active flow: any plain text is a free-form question.
	if text == "" {
		return schema.Outbound{ChatID: in.ChatID}, nil
	}
	return s.answerQuestion(ctx, in, text, "")
}

func (s *Service) handleCommand(ctx context.Context, in schema.Inbound, user schema.User, text string) (schema.Outbound, error) {
	if err := s.sessions.Clear(ctx, in.UserID); err != nil {
		s.log.Error("clear session", zap.Int64("user_id", in.UserID), zap.Error(err))
		return s.reply(in, msgInternalError), nil
	}

	command := strings.ToLower(text)
	switch command {
	case "/start":
		return s.reply(in, fmt.Sprintf(msgWelcome, in.Name)), nil
	case "/help":
		help := msgHelp
		if user.IsAdmin() {
			help += msgHelpAdmin
		}
		return s.reply(in, help), nil
	case "/ask":
		if err := s.sessions.SetState(ctx, in.UserID, schema.StateWaitingQuestion, session.DefaultTTL); err != nil {
			s.log.Error("set state", zap.Int64("user_id", in.UserID), zap.Error(err))
			return s.reply(in, msgInternalError), nil
		}
		return s.reply(in, fmt.Sprintf(msgAskPrompt, in.Name)), nil
	case "/add":
		if !user.IsAdmin() {
			return s.reply(in, msgNotAllowed), nil
		}
		if err := s.sessions.SetState(ctx, in.UserID, schema.StateAddWaitQuestion, session.DefaultTTL); err != nil {
			s.log.Error("set state", zap.Int64("user_id", in.UserID), zap.Error(err))
			return s.reply(in, msgInternalError), nil
		}
		return s.reply(in, msgAddPrompt), nil
	case "/status":
		return s.reply(in, fmt.Sprintf(msgStatus, in.ChatID, in.UserID, user.Role)), nil
	default:
		return s.reply(in, msgUnknownCommand), nil
	}
}

// handleAskInput consumes the text posed after /ask as the question.
func (s *Service) handleAskInput(ctx context.Context, in schema.Inbound, text string) (schema.Outbound, error) {
	if text == "" {
		return s.reply(in, msgEmptyQuestion), nil
	}
	if err := s.sessions.Clear(ctx, in.UserID); err != nil {
		s.log.Error("clear session", zap.Int64("user_id", in.UserID), zap.Error(err))
		return s.reply(in, msgInternalError), nil
	}
	return s.answerQuestion(ctx, in, text, msgAnswerHeader)
}

func (s *Service) answerQuestion(ctx context.Context, in schema.Inbound, text, header string) (schema.Outbound, error) {
	answer, err := s.matcher.Ask(ctx, text)
	if err != nil {
		var upstream *errorz.UpstreamError
		if errors.As(err, &upstream) {
			s.log.Error("completion backend failed",
				zap.Int64("user_id", in.UserID),
				zap.String("question", text),
				zap.Int("status", upstream.Status),
				zap.Error(err))
			return s.reply(in, msgNoAnswer), nil
		}
		s.log.Error("answer question",
			zap.Int64("user_id", in.UserID),
			zap.String("question", text),
			zap.Error(err))
		return s.reply(in, msgQuestionError), nil
	}
	return s.reply(in, header+answer), nil
}

func (s *Service) handleAddQuestionInput(ctx context.Context, in schema.Inbound, text string) (schema.Outbound, error) {
	if text == "" {
		return s.reply(in, msgEmptyAddQuestion), nil
	}
	if err := s.sessions.SetData(ctx, in.UserID, schema.DataKeyAddQuestion, text); err != nil {
		s.log.Error("save pending question", zap.Int64("user_id", in.UserID), zap.Error(err))
		return s.reply(in, msgInternalError), nil
	}
	if err := s.sessions.SetState(ctx, in.UserID, schema.StateAddWaitAnswer, session.DefaultTTL); err != nil {
		s.log.Error("set state", zap.Int64("user_id", in.UserID), zap.Error(err))
		return s.reply(in, msgInternalError), nil
	}
	return s.reply(in, fmt.Sprintf(msgAddAnswerPrompt, text)), nil
}

func (s *Service) handleAddAnswerInput(ctx context.Context, in schema.Inbound, sess schema.Session, text string) (schema.Outbound, error) {
	if text == "" {
		return s.reply(in, msgEmptyAddAnswer), nil
	}

	answer, ok := ParseBoolAnswer(text)
	if !ok {
		// Unparsable input re-prompts without leaving the state.
		return s.reply(in, msgBadAnswerFormat), nil
	}

	pending, ok := sess.Data[schema.DataKeyAddQuestion]
	if !ok || strings.TrimSpace(pending) == "" {
		// Scratch is gone (swept or corrupt): fatal to the flow, start over.
		s.log.Warn("pending question missing mid-flow", zap.Int64("user_id", in.UserID))
		if err := s.sessions.Clear(ctx, in.UserID); err != nil {
			s.log.Error("clear session", zap.Int64("user_id", in.UserID), zap.Error(err))
		}
		return s.reply(in, msgAddLost), nil
	}

	topic, err := s.topics.ClassifyWithFallback(ctx, pending)
	if err != nil {
		s.log.Error("classify topic", zap.String("question", pending), zap.Error(err))
		topic = nil
	}

	q := schema.Question{Question: pending, Answer: answer}
	var topicLabel string
	if topic != nil {
		q.TopicID = &topic.ID
		topicLabel = topic.Topic
	} else {
		topicLabel = "Не определен"
	}

	if _, err := s.questions.Create(ctx, q); err != nil {
		s.log.Error("create question",
			zap.Int64("user_id", in.UserID),
			zap.String("question", pending),
			zap.Error(err))
		if clearErr := s.sessions.Clear(ctx, in.UserID); clearErr != nil {
			s.log.Error("clear session", zap.Int64("user_id", in.UserID), zap.Error(clearErr))
		}
		return s.reply(in, msgAddFailed), nil
	}

	if err := s.sessions.Clear(ctx, in.UserID); err != nil {
		s.log.Error("clear session", zap.Int64("user_id", in.UserID), zap.Error(err))
	}

	answerText := "Нет"
	if answer {
		answerText = "Да"
	}
	return s.reply(in, fmt.Sprintf(msgAddSuccess, pending, answerText, topicLabel)), nil
}

// resolveUser loads or creates the principal, refreshing the display name on
// divergence. Ids listed in the admin allow-list are created as admins.
func (s *Service) resolveUser(ctx context.Context, in schema.Inbound) (schema.User, error) {
	user, err := s.users.Get(ctx, in.UserID)
	if err == nil {
		if user.Name != in.Name && in.Name != "" {
			if err := s.users.UpdateName(ctx, in.UserID, in.Name); err != nil {
				return schema.User{}, err
			}
			user.Name = in.Name
		}
		return user, nil
	}
	if !errors.Is(err, errorz.ErrNotFound) {
		return schema.User{}, err
	}

	role := schema.RoleUser
	if _, ok := s.adminIDs[in.UserID]; ok {
		role = schema.RoleAdmin
	}
	created, err := s.users.Create(ctx, schema.User{
		ChatID: in.ChatID,
		UserID: in.UserID,
		Name:   in.Name,
		Role:   role,
	})
	if err != nil {
		return schema.User{}, err
	}
	s.log.Info("created user",
		zap.Int64("user_id", in.UserID),
		zap.String("name", in.Name),
		zap.String("role", string(role)))
	return created, nil
}

func (s *Service) reply(in schema.Inbound, text string) schema.Outbound {
	return schema.Outbound{ChatID: in.ChatID, Text: text}
}

var (
	trueAnswers  = []string{"да", "yes", "true", "1", "давай", "конечно", "ага", "угу"}
	falseAnswers = []string{"нет", "no", "false", "0", "не", "неа", "не-а"}
)

// ParseBoolAnswer interprets a yes/no reply, case-insensitive and trimmed.
// The second result is false when the text matches neither set.
func ParseBoolAnswer(text string) (bool, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, t := range trueAnswers {
		if text == t {
			return true, true
		}
	}
	for _, f := range falseAnswers {
		if text == f {
			return false, true
		}
	}
	return false, false
}
