// Package telegram adapts Telegram long-polling updates to the dialog
// service. All routing and state decisions live in the dialog service; this
// layer only moves messages.
package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"KharitonBot/internal/domain/schema"
	"KharitonBot/internal/domain/service/dialog"
)

type Runner struct {
	bot *tgbot.Bot
	log *zap.Logger
}

type Controller struct {
	bot    *tgbot.Bot
	dialog *dialog.Service
	log    *zap.Logger
}

func New(token string, dialogSvc *dialog.Service, log *zap.Logger) (*Runner, error) {
	ctrl := &Controller{dialog: dialogSvc, log: log}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(ctrl.handleUpdate))
	if err != nil {
		return nil, err
	}
	ctrl.bot = b

	return &Runner{bot: b, log: log}, nil
}

func (r *Runner) Start(ctx context.Context) {
	r.log.Info("telegram bot started")
	r.bot.Start(ctx)
}

func (c *Controller) handleUpdate(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}

	in := schema.Inbound{
		UserID: msg.From.ID,
		ChatID: msg.Chat.ID,
		Name:   msg.From.FirstName,
		Text:   msg.Text,
	}

	// Matching may take a while; show the user something is happening.
	_, _ = b.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: in.ChatID,
		Action: models.ChatActionTyping,
	})

	out, err := c.dialog.HandleMessage(ctx, in)
	if err != nil {
		c.log.Error("handle message",
			zap.Int64("user_id", in.UserID),
			zap.Error(err))
		return
	}
	if out.Text == "" {
		return
	}

	if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    out.ChatID,
		Text:      out.Text,
		ParseMode: models.ParseModeHTML,
	}); err != nil {
		c.log.Error("send message",
			zap.Int64("chat_id", out.ChatID),
			zap.Error(err))
	}
}
