package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data formats. Telegram caps callback_data at 64 bytes, so the
// feedback payload carries a truncated copy of the question.
const (
	cbCategory = "CAT"
	cbNext     = "NEXT"
	cbFeedback = "fb"

	callbackDataLimit = 64
)

// categoryKeyboard offers one button per category, two per row, plus a
// search-all button.
func categoryKeyboard(categories []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, cat := range categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(cat, cbCategory+"|"+cat))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("all categories", cbCategory+"|all"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// nextKeyboard follows a recorded rating.
func nextKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ask again", cbNext+"|again"),
			tgbotapi.NewInlineKeyboardButtonData("done", cbNext+"|done"),
		),
	)
}

// feedbackKeyboard offers a 1..5 rating row. The question rides along in the
// callback data so the rating can be logged against it.
func feedbackKeyboard(question string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for score := 1; score <= 5; score++ {
		data := fmt.Sprintf("%s|%d|%s", cbFeedback, score, question)
		data = truncateBytes(data, callbackDataLimit)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strings.Repeat("⭐", score), data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
