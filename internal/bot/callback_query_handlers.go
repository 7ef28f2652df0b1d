package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"postsummarizer/internal/database"
	"postsummarizer/internal/domain"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	chatID, messageID := callbackMessage(callback)
	if chatID == 0 {
		return b.answerCallback(ctx, callback.ID, "✖️ Message is too old.")
	}

	data := strings.TrimSpace(callback.Data)

	if id, ok := strings.CutPrefix(data, showOriginalPrefix); ok {
		return b.handleToggleQuery(ctx, callback, chatID, messageID, id, domain.ViewOriginal)
	}

	if id, ok := strings.CutPrefix(data, showSummaryPrefix); ok {
		return b.handleToggleQuery(ctx, callback, chatID, messageID, id, domain.ViewSummary)
	}

	if id, ok := strings.CutPrefix(data, summarizePrefix); ok {
		return b.handleSummarizeQuery(ctx, callback, chatID, messageID, id)
	}

	if feedIDStr, ok := strings.CutPrefix(data, unwatchPrefix); ok {
		return b.handleUnwatchQuery(ctx, callback, chatID, feedIDStr)
	}

	return b.answerCallback(ctx, callback.ID, "")
}

func (b *Bot) handleToggleQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	messageID int,
	id string,
	view domain.SummaryView,
) error {
	s, err := b.chatSummary(ctx, chatID, id)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	if s.Summary == "" {
		view = domain.ViewOriginal
	}

	if s.View != view {
		if err = b.db.SetSummaryView(ctx, s.ID, view); err != nil {
			return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("set summary view: %w", err))
		}
		s.View = view
	}

	if err = b.editMessage(ctx, chatID, messageID, renderSummary(s), summaryKeyboard(s)); err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("edit message: %w", err))
	}

	return b.answerCallback(ctx, callback.ID, "")
}

func (b *Bot) handleSummarizeQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	messageID int,
	id string,
) error {
	s, err := b.chatSummary(ctx, chatID, id)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	if s.Summary == "" {
		// Answer first, summarizing can take longer than the callback lives.
		if err = b.answerCallback(ctx, callback.ID, "✨ Summarizing…"); err != nil {
			b.log.WarnContext(ctx, "Failed to answer callback query",
				"error", err,
				"chatID", chatID)
		}

		summary, reply, summarizeErr := b.summarizeForChat(ctx, chatID, s.Original, s.SourceURL)
		if summarizeErr != nil {
			return summarizeErr
		}

		if reply != "" {
			_, err = b.sendMessage(ctx, chatID, reply, nil)
			return err
		}

		if err = b.db.SetSummaryText(ctx, s.ID, summary); err != nil {
			return fmt.Errorf("set summary text: %w", err)
		}

		s.Summary = summary
		s.View = domain.ViewSummary

		return b.editMessage(ctx, chatID, messageID, renderSummary(s), summaryKeyboard(s))
	}

	if s.View != domain.ViewSummary {
		if err = b.db.SetSummaryView(ctx, s.ID, domain.ViewSummary); err != nil {
			return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("set summary view: %w", err))
		}
		s.View = domain.ViewSummary
	}

	if err = b.editMessage(ctx, chatID, messageID, renderSummary(s), summaryKeyboard(s)); err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("edit message: %w", err))
	}

	return b.answerCallback(ctx, callback.ID, "")
}

func (b *Bot) handleUnwatchQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	feedIDStr string,
) error {
	feedID, err := strconv.ParseInt(strings.TrimSpace(feedIDStr), 10, 64)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("parse feedID: %w", err))
	}

	if err = b.db.RemoveFeed(ctx, chatID, feedID); err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("remove feed: %w", err))
	}

	if err = b.answerCallback(ctx, callback.ID, "✅ Feed is removed."); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return b.handleListCommand(ctx, chatID)
}

// chatSummary loads a stored summary and checks that it belongs to chatID.
func (b *Bot) chatSummary(ctx context.Context, chatID int64, id string) (domain.Summary, error) {
	s, err := b.db.GetSummary(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Summary{}, fmt.Errorf("get summary: %w", err)
	}

	if s.ChatID != chatID {
		return domain.Summary{}, fmt.Errorf("get summary: %w", database.ErrNotFound)
	}

	return s, nil
}

func (b *Bot) errorCallbackAnswer(ctx context.Context, callback *models.CallbackQuery, err error) error {
	errs := []error{err}

	text := "❌ Failed."
	if errors.Is(err, database.ErrNotFound) {
		text = "✖️ This post is no longer available."
	}

	if answerErr := b.answerCallback(ctx, callback.ID, text); answerErr != nil {
		errs = append(errs, fmt.Errorf("answer callback query: %w", answerErr))
	}

	return errors.Join(errs...)
}
