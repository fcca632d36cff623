// Package bot is the Telegram front end: it turns chat messages into pipeline
// questions and renders answers, category pickers and rating keyboards back.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lorebot/internal/feedback"
	"lorebot/internal/pipeline"
)

// sender is the subset of the Telegram client the handlers need. Tests swap
// in a recording fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Asker answers one question, resolving category prefixes and session state.
type Asker interface {
	Ask(ctx context.Context, input, sessionCategory string) (pipeline.Answer, error)
}

// Indexed reports whether a category has a loaded index.
type Indexed interface {
	Has(category string) bool
}

// Bot consumes Telegram updates and drives the question pipeline. Each update
// is handled in its own goroutine so a slow model call never blocks other
// chats.
type Bot struct {
	api        *tgbotapi.BotAPI
	client     sender
	asker      Asker
	indexed    Indexed
	sessions   *Sessions
	feedback   *feedback.Log
	categories []string
	logger     *slog.Logger
}

func New(api *tgbotapi.BotAPI, asker Asker, indexed Indexed, fb *feedback.Log, categories []string, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:        api,
		client:     api,
		asker:      asker,
		indexed:    indexed,
		sessions:   NewSessions(),
		feedback:   fb,
		categories: categories,
		logger:     logger,
	}
}

// Run consumes the long-poll update stream until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.IsCommand():
		b.handleCommand(upd.Message)
	case upd.Message != nil:
		b.handleQuestion(ctx, upd.Message)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.client.Send(c); err != nil {
		b.logger.Error("telegram send failed", "error", err)
	}
}
