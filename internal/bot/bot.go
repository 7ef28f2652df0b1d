// Package bot is the Telegram front end: it summarizes posts sent to it, manages the
// per-chat summarization settings and the list of watched feeds.
package bot

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"postsummarizer/internal/database"
	"postsummarizer/internal/domain"
	"postsummarizer/internal/ratelimiter"
	"postsummarizer/internal/settings"
	"postsummarizer/internal/summarizer"
)

const updateProcessingTimeout = 3 * time.Minute

// api is the part of the Bot API the bot uses.
type api interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type feedFinder interface {
	FindValidFeeds(ctx context.Context, text string) ([]domain.Feed, error)
}

type Bot struct {
	tg           *bot.Bot
	api          api
	rateLimiter  *ratelimiter.RateLimiter
	db           *database.Database
	summarizer   summarizer.Summarizer
	fetcher      feedFinder
	defaults     settings.Settings
	allowedUsers []int64
	log          *slog.Logger
}

func New(
	token string,
	db *database.Database,
	s summarizer.Summarizer,
	fetcher feedFinder,
	defaults settings.Settings,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, ratelimiter.New(log), db, s, fetcher, defaults, allowedUsers, log)

	tg, err := bot.New(
		strings.TrimSpace(token),
		bot.WithDefaultHandler(b.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			log.Error("Failed to get updates",
				"error", err)
		}),
	)
	if err != nil {
		b.rateLimiter.Stop()

		return nil, err
	}

	b.tg = tg
	b.api = tg

	return b, nil
}

func newBot(
	a api,
	rl *ratelimiter.RateLimiter,
	db *database.Database,
	s summarizer.Summarizer,
	fetcher feedFinder,
	defaults settings.Settings,
	allowedUsers []int64,
	log *slog.Logger,
) *Bot {
	return &Bot{
		api:          a,
		rateLimiter:  rl,
		db:           db,
		summarizer:   s,
		fetcher:      fetcher,
		defaults:     defaults,
		allowedUsers: allowedUsers,
		log:          log,
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.tg.Start(ctx)
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil {
			return
		}

		if !b.userAllowed(message.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", message.From.ID,
				"chatID", message.Chat.ID,
				"username", message.From.Username,
				"chatType", message.Chat.Type)

			return
		}

		if err := b.handleMessage(updateCtx, message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", message.Chat.ID,
				"userID", message.From.ID,
				"chatType", message.Chat.Type,
				"messageID", message.ID)
		}

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		chatID, messageID := callbackMessage(callback)

		if !b.userAllowed(callback.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", callback.From.ID,
				"chatID", chatID,
				"username", callback.From.Username,
				"data", callback.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, callback); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", callback.From.ID,
				"data", callback.Data,
				"messageID", messageID)
		}
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func callbackMessage(cb *models.CallbackQuery) (int64, int) {
	if cb == nil || cb.Message.Message == nil {
		return 0, 0
	}

	return cb.Message.Message.Chat.ID, cb.Message.Message.ID
}
