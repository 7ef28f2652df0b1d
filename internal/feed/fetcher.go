// Package feed discovers and reads the feeds a chat watches.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"mvdan.cc/xurls/v2"

	"postsummarizer/internal/domain"
	"postsummarizer/internal/post"
)

const (
	httpClientTimeout   = 20 * time.Second
	defaultTelegramBase = "https://" + telegramHost
)

type Fetcher struct {
	libParser       *gofeed.Parser
	httpClient      *http.Client
	telegramBaseURL string
	log             *slog.Logger
}

func NewFetcher(log *slog.Logger) *Fetcher {
	httpClient := &http.Client{Timeout: httpClientTimeout}

	libParser := gofeed.NewParser()
	libParser.Client = httpClient
	libParser.UserAgent = userAgent

	return &Fetcher{
		libParser:       libParser,
		httpClient:      httpClient,
		telegramBaseURL: defaultTelegramBase,
		log:             log,
	}
}

// FindValidFeeds picks https links and @channel mentions out of text and keeps those
// that resolve to a readable feed.
func (f *Fetcher) FindValidFeeds(
	ctx context.Context,
	text string,
) ([]domain.Feed, error) {
	text = strings.TrimSpace(text)

	var candidates []string

	httpsURLRe, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	for _, u := range httpsURLRe.FindAllString(text, -1) {
		candidates = append(candidates, strings.TrimSpace(u))
	}

	for _, m := range telegramAtSignSlugRe.FindAllStringSubmatch(text, -1) {
		if len(m) < minPartsForTelegramChannelAtSignSlug {
			continue
		}

		slug := strings.TrimSpace(m[2])
		if !telegramSlugRe.MatchString(slug) {
			continue
		}

		candidates = append(candidates, TelegramChannelCanonicalURL(slug))
	}

	feeds := make([]domain.Feed, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	var errs []error

	for _, candidate := range candidates {
		feed, validateFeedErr := f.validateFeed(ctx, candidate)
		if validateFeedErr != nil {
			errs = append(errs, fmt.Errorf("validate feed: %w", validateFeedErr))
			continue
		}

		if _, ok := seen[feed.URL]; ok {
			continue
		}

		feeds = append(feeds, feed)
		seen[feed.URL] = struct{}{}
	}

	return feeds, errors.Join(errs...)
}

// Fetch reads a watched feed and returns its title and the items published after since.
// Items without a publication time are treated as new.
func (f *Fetcher) Fetch(
	ctx context.Context,
	feed domain.ChatFeed,
	since time.Time,
) (string, []domain.Item, error) {
	feedURL := strings.TrimSpace(feed.URL)

	if ok, slug := isTelegramChannelURL(feedURL); ok {
		return f.fetchTelegramItems(ctx, feed, slug, since)
	}

	parsed, err := f.libParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return "", nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	title := firstNonEmpty(parsed.Title, feed.Title, feedURL)

	var items []domain.Item
	for _, it := range parsed.Items {
		item, ok := f.feedItem(ctx, feed, title, it, since)
		if !ok {
			continue
		}

		items = append(items, item)
	}

	return title, items, nil
}

func (f *Fetcher) feedItem(
	ctx context.Context,
	feed domain.ChatFeed,
	feedTitle string,
	it *gofeed.Item,
	since time.Time,
) (domain.Item, bool) {
	var published time.Time
	if it.PublishedParsed != nil {
		published = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		published = *it.UpdatedParsed
	}

	if !published.IsZero() && !published.After(since) {
		return domain.Item{}, false
	}

	itemURL := strings.TrimSpace(it.Link)
	if itemURL == "" {
		f.log.WarnContext(ctx, "Skipping feed item with empty URL",
			"feedURL", feed.URL,
			"feedTitle", feedTitle,
			"itemTitle", it.Title)

		return domain.Item{}, false
	}

	text := post.HTMLToText(it.Content)
	if text == "" {
		text = post.HTMLToText(it.Description)
	}

	return domain.Item{
		FeedID:    feed.ID,
		FeedTitle: feedTitle,
		URL:       itemURL,
		Title:     strings.TrimSpace(it.Title),
		Text:      firstNonEmpty(text, it.Title),
		Published: published,
	}, true
}

func (f *Fetcher) fetchTelegramItems(
	ctx context.Context,
	feed domain.ChatFeed,
	slug string,
	since time.Time,
) (string, []domain.Item, error) {
	ch, err := f.fetchTelegramChannel(ctx, slug)
	if err != nil {
		return "", nil, fmt.Errorf("fetch Telegram channel: %w", err)
	}

	title := firstNonEmpty(ch.Title, feed.Title, TelegramChannelCanonicalURL(slug))

	var items []domain.Item
	for _, p := range ch.Posts {
		if !p.Published.IsZero() && !p.Published.After(since) {
			continue
		}

		if strings.TrimSpace(p.Text) == "" {
			continue
		}

		items = append(items, domain.Item{
			FeedID:    feed.ID,
			FeedTitle: title,
			URL:       p.URL,
			Text:      p.Text,
			Published: p.Published,
		})
	}

	return title, items, nil
}

func (f *Fetcher) validateFeed(
	ctx context.Context,
	feedURL string,
) (domain.Feed, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return domain.Feed{}, errors.New("feed URL is empty")
	}

	if _, err := url.Parse(feedURL); err != nil {
		return domain.Feed{}, fmt.Errorf("parse URL: %w", err)
	}

	if ok, slug := isTelegramChannelURL(feedURL); ok {
		ch, err := f.fetchTelegramChannel(ctx, slug)
		if err != nil {
			return domain.Feed{}, fmt.Errorf("fetch Telegram channel: %w", err)
		}

		canonicalURL := TelegramChannelCanonicalURL(slug)

		title := strings.TrimSpace(ch.Title)
		if title == "" {
			f.log.WarnContext(ctx, "Empty Telegram channel title",
				"canonicalURL", canonicalURL,
				"slug", slug)

			title = canonicalURL
		}

		return domain.Feed{URL: canonicalURL, Title: title}, nil
	}

	parsed, err := f.libParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		f.log.WarnContext(ctx, "Empty feed title",
			"feedURL", feedURL,
			"fallbackTitle", feedURL)

		title = feedURL
	}

	return domain.Feed{URL: feedURL, Title: title}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}
