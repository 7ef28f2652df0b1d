package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postsummarizer/internal/domain"
	"postsummarizer/internal/markdown"
	"postsummarizer/internal/provider"
	"postsummarizer/internal/settings"
	"postsummarizer/internal/summarizer"
)

// renderSummary builds the message text for the current view of s.
func renderSummary(s domain.Summary) string {
	var b strings.Builder

	if s.Summary == "" || s.View == domain.ViewOriginal {
		b.WriteString("📄 *Original*\n\n")
		b.WriteString(markdown.EscapeV2(truncateRunes(s.Original, maxBodyRunes)))
	} else {
		b.WriteString("📝 *Summary*\n\n")
		b.WriteString(markdown.EscapeV2(s.Summary))
	}

	if s.SourceURL != "" {
		b.WriteString(fmt.Sprintf("\n\n[Source](%s)", markdown.EscapeLinkURL(s.SourceURL)))
	}

	return b.String()
}

// deliver stores s, sends it to its chat and remembers the message it went out in.
func (b *Bot) deliver(ctx context.Context, s domain.Summary) error {
	id, err := b.db.SaveSummary(ctx, s)
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	s.ID = id

	messageID, err := b.sendMessage(ctx, s.ChatID, renderSummary(s), summaryKeyboard(s))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if err = b.db.SetSummaryMessage(ctx, id, messageID); err != nil {
		return fmt.Errorf("set summary message: %w", err)
	}

	return nil
}

// summarizeForChat summarizes text with the chat's settings. Problems the user can fix
// are returned as a reply, not as an error.
func (b *Bot) summarizeForChat(
	ctx context.Context,
	chatID int64,
	text string,
	sourceURL string,
) (string, string, error) {
	st, err := b.db.GetChatSettingsWithDefault(ctx, chatID, b.defaults)
	if err != nil {
		return "", "", fmt.Errorf("get chat settings: %w", err)
	}

	if err = st.Validate(); err != nil {
		return "", settingsProblemText(err), nil
	}

	var summary string
	err = b.withSpinner(ctx, chatID, func() error {
		var summarizeErr error
		summary, summarizeErr = b.summarizer.Summarize(ctx, st, summarizer.Input{
			Text:      text,
			SourceURL: sourceURL,
		})

		return summarizeErr
	})
	if err != nil {
		b.log.WarnContext(ctx, "Failed to summarize post for chat",
			"error", err,
			"chatID", chatID,
			"provider", st.Provider,
			"model", st.Model)

		return "", "❌ Error: " + markdown.EscapeV2(userMessage(err)), nil
	}

	return summary, "", nil
}

func settingsProblemText(err error) string {
	var validationErr *settings.ValidationError
	if !errors.As(err, &validationErr) {
		return "⚠️ " + markdown.EscapeV2(err.Error())
	}

	var b strings.Builder
	b.WriteString("⚠️ *Settings need attention:*\n\n")
	for _, problem := range validationErr.Problems {
		b.WriteString("– " + markdown.EscapeV2(problem) + "\n")
	}
	b.WriteString("\nSee /settings")

	return b.String()
}

// userMessage turns a summarization failure into text for the chat.
func userMessage(err error) string {
	var (
		transport *provider.TransportError
		unknown   *provider.UnknownProviderError
		truncated *provider.TruncatedResponseError
		empty     *provider.EmptyResponseError
		upstream  *provider.UpstreamReportedError
		malformed *provider.MalformedPayloadError
	)

	switch {
	case errors.As(err, &transport) && transport.IsAuth():
		return fmt.Sprintf("%s authentication failed, check your API key with /key.", transport.Provider)
	case errors.As(err, &transport):
		return transport.Error()
	case errors.As(err, &unknown):
		return "Unknown provider, choose one with /provider."
	case errors.As(err, &truncated):
		return truncated.Error() + " with /maxtokens."
	case errors.As(err, &empty):
		return empty.Error()
	case errors.As(err, &upstream):
		return upstream.Error()
	case errors.As(err, &malformed):
		return malformed.Error()
	case errors.Is(err, summarizer.ErrEmptyText):
		return "There is no text to summarize."
	case errors.Is(err, context.DeadlineExceeded):
		return "The provider took too long to answer."
	default:
		return "Something went wrong, try again later."
	}
}
