package bot

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	sendSpinnerInterval = 4 * time.Second

	// Visible length limit of a message, with room for headers.
	maxBodyRunes = 3800
)

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	if _, err := b.api.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil && ctx.Err() == nil {
		b.log.ErrorContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)
	}
}

func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	spinnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		b.sendTyping(spinnerCtx, chatID)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-spinnerCtx.Done():
				return
			case <-t.C:
				b.sendTyping(spinnerCtx, chatID)
			}
		}
	}()

	return fn()
}

// sendMessage sends MarkdownV2 text and returns the id of the sent message.
func (b *Bot) sendMessage(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard [][]models.InlineKeyboardButton,
) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               b.validUTF8(ctx, chatID, text),
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if len(keyboard) > 0 {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}

	var messageID int

	err := b.rateLimiter.Send(ctx, chatID, func(ctx context.Context) error {
		msg, err := b.api.SendMessage(ctx, params)
		if err != nil {
			return err
		}
		if msg != nil {
			messageID = msg.ID
		}

		return nil
	})

	return messageID, err
}

func (b *Bot) editMessage(
	ctx context.Context,
	chatID int64,
	messageID int,
	text string,
	keyboard [][]models.InlineKeyboardButton,
) error {
	params := &bot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               b.validUTF8(ctx, chatID, text),
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if len(keyboard) > 0 {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}

	return b.rateLimiter.Send(ctx, chatID, func(ctx context.Context) error {
		_, err := b.api.EditMessageText(ctx, params)
		return err
	})
}

func (b *Bot) answerCallback(ctx context.Context, callbackID string, text string) error {
	_, err := b.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})

	return err
}

func (b *Bot) validUTF8(ctx context.Context, chatID int64, text string) string {
	normalized := strings.ToValidUTF8(text, "?")
	if normalized != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalized))
	}

	return normalized
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)

	return strings.TrimSpace(string(runes[:limit])) + "…"
}
