package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postsummarizer/internal/domain"
	"postsummarizer/internal/markdown"
)

func (b *Bot) handleWatchCommand(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		_, err := b.sendMessage(ctx, chatID, "✖️ Send /watch with feed URLs or channel @username slugs\\.", nil)
		return err
	}

	feeds, err := b.fetcher.FindValidFeeds(ctx, text)

	if len(feeds) == 0 {
		var errs []error
		if err != nil {
			errs = append(errs, fmt.Errorf("find valid feeds: %w", err))
		}

		if _, sendErr := b.sendMessage(ctx, chatID, "✖️ Valid feed URLs are not found\\.", nil); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	var errs []error
	if err != nil {
		errs = append(errs, fmt.Errorf("find valid feeds: %w", err))
	}

	added := 0
	for _, f := range feeds {
		if err = b.db.AddFeed(ctx, chatID, f.URL, f.Title); err != nil {
			errs = append(errs, fmt.Errorf("add feed: %w", err))
		} else {
			added++
		}
	}

	text = "✅ Success\\."
	switch {
	case added == 0:
		text = "❌ Failed\\."
	case len(errs) > 0:
		text = fmt.Sprintf("⚠️ Partial success \\(%d added\\)\\.", added)
	}

	if _, err = b.sendMessage(ctx, chatID, text, nil); err != nil {
		errs = append(errs, fmt.Errorf("send message: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) handleListCommand(ctx context.Context, chatID int64) error {
	feeds, err := b.db.GetChatFeeds(ctx, chatID)
	if err != nil || len(feeds) == 0 {
		var errs []error
		if err != nil {
			errs = append(errs, fmt.Errorf("get chat feeds: %w", err))
		}

		if _, sendErr := b.sendMessage(ctx, chatID, "✖️ Feed list is empty\\. Add feeds with /watch", nil); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("🔍 *Found %d feeds:*\n\n", len(feeds)))

	for i, f := range feeds {
		title := strings.TrimSpace(f.Title)
		if title == "" {
			title = f.URL
		}

		message.WriteString(fmt.Sprintf("%d\\. [%s](%s)\n",
			i+1,
			markdown.EscapeV2(title),
			markdown.EscapeLinkURL(f.URL)))
	}

	if _, err = b.sendMessage(ctx, chatID, message.String(), feedListKeyboard(feeds)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendFeedItem delivers a new post of a watched feed. With auto-summarize on the chat
// gets the summary, otherwise the post with a Summarize button.
func (b *Bot) SendFeedItem(ctx context.Context, chatID int64, item domain.Item) error {
	original := feedItemText(item)

	s := domain.Summary{
		ChatID:    chatID,
		SourceURL: item.URL,
		Original:  original,
		View:      domain.ViewOriginal,
	}

	st, err := b.db.GetChatSettingsWithDefault(ctx, chatID, b.defaults)
	if err != nil {
		return fmt.Errorf("get chat settings: %w", err)
	}

	if st.AutoSummarize {
		summary, reply, summarizeErr := b.summarizeForChat(ctx, chatID, original, item.URL)
		switch {
		case summarizeErr != nil:
			b.log.WarnContext(ctx, "Failed to auto-summarize feed item",
				"error", summarizeErr,
				"chatID", chatID,
				"url", item.URL)
		case reply != "":
			b.log.DebugContext(ctx, "Feed item is sent without summary",
				"chatID", chatID,
				"url", item.URL)
		default:
			s.Summary = summary
			s.View = domain.ViewSummary
		}
	}

	if err = b.deliver(ctx, s); err != nil {
		return fmt.Errorf("deliver feed item: %w", err)
	}

	return nil
}

func feedItemText(item domain.Item) string {
	var parts []string

	if title := strings.TrimSpace(item.FeedTitle); title != "" {
		parts = append(parts, title)
	}

	if title := strings.TrimSpace(item.Title); title != "" && !strings.HasPrefix(item.Text, title) {
		parts = append(parts, title)
	}

	if text := strings.TrimSpace(item.Text); text != "" {
		parts = append(parts, text)
	}

	return strings.Join(parts, "\n\n")
}
