package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"postsummarizer/internal/post"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	minPartsForTelegramChannelSlugStartingWithS = 2
	minPartsForTelegramChannelAtSignSlug        = 3

	telegramHost = "t.me"
)

var (
	telegramSlugRe       = regexp.MustCompile(`^\w{5,32}$`)
	telegramAtSignSlugRe = regexp.MustCompile(`(\s|^)@(\w{5,32})(\s|$)`)
)

func TelegramChannelCanonicalURL(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ""
	}

	return fmt.Sprintf("https://%s/s/%s", telegramHost, slug)
}

func isTelegramChannelURL(raw string) (bool, string) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return false, ""
	}

	if u.Host != telegramHost {
		return false, ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return false, ""
	}

	parts := strings.Split(path, "/")

	var slug string

	switch parts[0] {
	case "s":
		if len(parts) < minPartsForTelegramChannelSlugStartingWithS {
			return false, ""
		}
		slug = parts[1]
	default:
		slug = parts[0]
	}

	slug = strings.TrimSpace(slug)

	if !telegramSlugRe.MatchString(slug) {
		return false, ""
	}

	return true, slug
}

func (f *Fetcher) fetchTelegramChannel(
	ctx context.Context,
	slug string,
) (post.Channel, error) {
	if strings.TrimSpace(slug) == "" {
		return post.Channel{}, errors.New("slug is empty")
	}

	pageURL := f.telegramBaseURL + "/s/" + strings.TrimSpace(slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return post.Channel{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req) //nolint:gosec // Telegram URL
	if err != nil {
		return post.Channel{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"pageURL", pageURL,
				"operation", "fetchTelegramChannel",
				"slug", slug)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return post.Channel{}, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	ch, err := post.ParseTelegramChannel(resp.Body)
	if err != nil && len(ch.Posts) == 0 && ch.Title == "" {
		return post.Channel{}, fmt.Errorf("parse channel: %w", err)
	}
	if err != nil {
		f.log.WarnContext(ctx, "Skipped unreadable Telegram posts",
			"error", err,
			"slug", slug)
	}

	return ch, nil
}
