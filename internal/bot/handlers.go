package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lorebot/internal/feedback"
	"lorebot/internal/pipeline"
	"lorebot/internal/retrieval"
)

const (
	greeting = "Welcome, adventurer. Ask me anything about the world's lore.\n" +
		"Pick a category to focus on, or search everything at once.\n" +
		"You can also prefix a question, e.g. \"maps: where is the frozen pass\"."
	searchingNote  = "Searching the lore..."
	internalErrMsg = "Something went wrong while answering. Please try again."
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sessions.Reset(msg.Chat.ID)
		out := tgbotapi.NewMessage(msg.Chat.ID, greeting)
		out.ReplyMarkup = categoryKeyboard(b.categories)
		b.send(out)
	case "reset":
		b.sessions.Reset(msg.Chat.ID)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Category cleared. Questions now search all categories."))
	case "categories":
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Available categories: "+strings.Join(b.categories, ", ")))
	default:
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Unknown command. Ask a question, or use /start, /reset, /categories."))
	}
}

func (b *Bot) handleQuestion(ctx context.Context, msg *tgbotapi.Message) {
	question := strings.TrimSpace(msg.Text)
	if question == "" {
		return
	}

	placeholder, err := b.client.Send(tgbotapi.NewMessage(msg.Chat.ID, searchingNote))
	if err != nil {
		b.logger.Error("telegram send failed", "error", err)
		return
	}

	ans, err := b.asker.Ask(ctx, question, b.sessions.Get(msg.Chat.ID))
	if err != nil {
		var nie *retrieval.NotIndexedError
		if errors.As(err, &nie) {
			b.send(tgbotapi.NewEditMessageText(msg.Chat.ID, placeholder.MessageID, nie.Error()))
			return
		}
		b.logger.Error("answer failed", "chat", msg.Chat.ID, "error", err)
		b.send(tgbotapi.NewEditMessageText(msg.Chat.ID, placeholder.MessageID, internalErrMsg))
		return
	}

	b.send(tgbotapi.NewEditMessageText(msg.Chat.ID, placeholder.MessageID, formatAnswer(ans)))

	rate := tgbotapi.NewMessage(msg.Chat.ID, "Rate this answer:")
	rate.ReplyMarkup = feedbackKeyboard(question)
	b.send(rate)

	next := tgbotapi.NewMessage(msg.Chat.ID, "Anything else?")
	next.ReplyMarkup = nextKeyboard()
	b.send(next)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops its spinner even if handling fails.
	if _, err := b.client.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Error("callback ack failed", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	parts := strings.SplitN(cb.Data, "|", 3)
	switch parts[0] {
	case cbCategory:
		if len(parts) < 2 {
			b.rejectCallback(chatID, cb.Data)
			return
		}
		b.selectCategory(chatID, parts[1])
	case cbNext:
		if len(parts) < 2 {
			b.rejectCallback(chatID, cb.Data)
			return
		}
		switch parts[1] {
		case "again":
			out := tgbotapi.NewMessage(chatID, "Pick a category, or just ask away.")
			out.ReplyMarkup = categoryKeyboard(b.categories)
			b.send(out)
		case "done":
			b.send(tgbotapi.NewMessage(chatID, "Done for now. Use /start to pick a category or /reset to search everything. "+
				"Rebuild the index with `lorebot index` when the lore files change."))
		default:
			b.rejectCallback(chatID, cb.Data)
		}
	case cbFeedback:
		if len(parts) < 3 {
			b.rejectCallback(chatID, cb.Data)
			return
		}
		b.recordFeedback(cb, parts[1], parts[2])
	default:
		b.rejectCallback(chatID, cb.Data)
	}
}

// rejectCallback reports a payload the handlers cannot parse. Session and
// feedback state are left untouched.
func (b *Bot) rejectCallback(chatID int64, data string) {
	b.logger.Warn("malformed callback", "data", data)
	b.send(tgbotapi.NewMessage(chatID, "That selection didn't come through. Please use the buttons."))
}

func (b *Bot) selectCategory(chatID int64, category string) {
	if category == "all" {
		b.sessions.Reset(chatID)
		b.send(tgbotapi.NewMessage(chatID, "Searching all categories. Ask away."))
		return
	}
	if !b.validCategory(category) {
		b.logger.Warn("callback for unknown category", "category", category)
		return
	}
	if b.indexed != nil && !b.indexed.Has(category) {
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"Category %s has no index yet. Run `lorebot index` first, or pick another category.", category)))
		return
	}
	b.sessions.Select(chatID, category)
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Category set to %s. Ask away.", category)))
}

func (b *Bot) recordFeedback(cb *tgbotapi.CallbackQuery, scoreStr, question string) {
	chatID := cb.Message.Chat.ID

	score, err := strconv.Atoi(scoreStr)
	if err != nil {
		b.logger.Warn("malformed feedback callback", "data", cb.Data)
		b.send(tgbotapi.NewMessage(chatID, "That rating didn't come through. Please use the rating buttons."))
		return
	}

	entry := feedback.Entry{
		UserID:   cb.From.ID,
		Username: cb.From.UserName,
		Score:    score,
		Question: question,
	}
	if err := b.feedback.Record(entry); err != nil {
		b.logger.Error("recording feedback failed", "error", err)
		b.send(tgbotapi.NewMessage(chatID, "Could not save your rating, sorry."))
		return
	}

	thanks := tgbotapi.NewMessage(chatID, "Thanks for the feedback!")
	thanks.ReplyMarkup = nextKeyboard()
	b.send(thanks)
}

func (b *Bot) validCategory(category string) bool {
	for _, cat := range b.categories {
		if cat == category {
			return true
		}
	}
	return false
}

// formatAnswer renders the answer text with its source citations and the
// search mode the question ran under. A not-found answer is delivered as the
// bare sentence, with no citations and no mode note.
func formatAnswer(ans pipeline.Answer) string {
	if ans.NotFound {
		return ans.Text
	}
	var sb strings.Builder
	sb.WriteString(ans.Text)
	if len(ans.Sources) > 0 {
		sb.WriteString("\n\n(Sources: ")
		sb.WriteString(strings.Join(ans.Sources, ", "))
		sb.WriteString(")")
	}
	sb.WriteString("\n[Mode: ")
	sb.WriteString(ans.Mode)
	sb.WriteString("]")
	return sb.String()
}
