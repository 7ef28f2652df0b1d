package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"postsummarizer/internal/domain"
	"postsummarizer/internal/post"
)

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	command, args := splitCommand(text)

	switch command {
	case "":
		return b.handleRandomText(ctx, chatID, text)
	case "/start", "/help":
		return b.handleStartCommand(ctx, chatID)
	case "/settings":
		return b.handleSettingsCommand(ctx, chatID)
	case "/watch":
		return b.handleWatchCommand(ctx, chatID, args)
	case "/list":
		return b.handleListCommand(ctx, chatID)
	default:
		if update, ok := settingCommands[command]; ok {
			return b.handleSettingCommand(ctx, chatID, update, args)
		}

		_, err := b.sendMessage(ctx, chatID, "✖️ Unknown command\\. See /start", nil)

		return err
	}
}

const maxPastedPosts = 5

// handleRandomText summarizes any text that is not a command. Pasted LinkedIn markup is
// split into its posts.
func (b *Bot) handleRandomText(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		_, err := b.sendMessage(ctx, chatID, "✖️ Send me the text of a post to summarize\\.", nil)
		return err
	}

	var errs []error

	for _, p := range postsFromText(text) {
		summary, reply, err := b.summarizeForChat(ctx, chatID, p.Text, p.URL)
		if err != nil {
			return errors.Join(append(errs, err)...)
		}

		if reply != "" {
			if _, err = b.sendMessage(ctx, chatID, reply, nil); err != nil {
				errs = append(errs, fmt.Errorf("send message: %w", err))
			}

			return errors.Join(errs...)
		}

		if err = b.deliver(ctx, domain.Summary{
			ChatID:    chatID,
			SourceURL: p.URL,
			Original:  p.Text,
			Summary:   summary,
			View:      domain.ViewSummary,
		}); err != nil {
			errs = append(errs, fmt.Errorf("deliver summary: %w", err))
		}
	}

	return errors.Join(errs...)
}

// postsFromText returns the posts to summarize from a message.
func postsFromText(text string) []post.Post {
	if !looksLikeHTML(text) {
		return []post.Post{{Text: text}}
	}

	posts, err := post.ParseLinkedIn(strings.NewReader(text), "")
	if err == nil {
		if len(posts) > maxPastedPosts {
			posts = posts[:maxPastedPosts]
		}

		return posts
	}

	if plain := post.HTMLToText(text); plain != "" {
		return []post.Post{{Text: plain}}
	}

	return []post.Post{{Text: text}}
}

func looksLikeHTML(text string) bool {
	return strings.HasPrefix(text, "<") && strings.Contains(text, "</")
}

// splitCommand returns the command without a @botname suffix and the rest of text.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(args)
}
