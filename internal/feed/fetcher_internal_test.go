package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postsummarizer/internal/domain"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Example Blog</title>
<link>https://example.com</link>
<item>
  <title>Fresh post</title>
  <link>https://example.com/fresh</link>
  <description>&lt;p&gt;Acme Corp is hiring &lt;b&gt;50&lt;/b&gt; engineers.&lt;/p&gt;</description>
  <pubDate>Wed, 01 Jan 2025 12:00:00 GMT</pubDate>
</item>
<item>
  <title>Old post</title>
  <link>https://example.com/old</link>
  <description>Old news.</description>
  <pubDate>Mon, 30 Dec 2024 12:00:00 GMT</pubDate>
</item>
<item>
  <title>No link</title>
  <description>Skipped.</description>
  <pubDate>Wed, 01 Jan 2025 12:00:00 GMT</pubDate>
</item>
</channel></rss>`

const channelBody = `<html><head><meta property="og:title" content="Example Channel"></head><body>
<div class="tgme_widget_message" data-post="example_channel/2">
  <div class="tgme_widget_message_text">Globex opens a lab.</div>
  <a class="tgme_widget_message_date" href="https://t.me/example_channel/2?single=1">
    <time datetime="2025-01-01T12:00:00+00:00"></time>
  </a>
</div>
<div class="tgme_widget_message" data-post="example_channel/1">
  <div class="tgme_widget_message_text">Ancient history.</div>
  <a class="tgme_widget_message_date" href="https://t.me/example_channel/1">
    <time datetime="2024-12-01T12:00:00+00:00"></time>
  </a>
</div>
</body></html>`

func newTestFetcher(t *testing.T) (*Fetcher, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = io.WriteString(w, rssBody)
		case "/s/example_channel":
			if r.Header.Get("User-Agent") == "" {
				t.Errorf("expected user agent to be set")
			}
			_, _ = io.WriteString(w, channelBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(slog.New(slog.DiscardHandler))
	f.telegramBaseURL = srv.URL

	return f, srv
}

func TestFetchRSS(t *testing.T) {
	f, srv := newTestFetcher(t)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	title, items, err := f.Fetch(context.Background(), domain.ChatFeed{ID: 3, URL: srv.URL + "/feed.xml"}, since)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if title != "Example Blog" {
		t.Fatalf("unexpected title: %q", title)
	}

	if len(items) != 1 {
		t.Fatalf("expected one fresh item, got %+v", items)
	}

	item := items[0]
	if item.URL != "https://example.com/fresh" || item.FeedID != 3 || item.FeedTitle != "Example Blog" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Text != "Acme Corp is hiring 50 engineers." {
		t.Fatalf("unexpected text: %q", item.Text)
	}
}

func TestFetchTelegramChannel(t *testing.T) {
	f, _ := newTestFetcher(t)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	title, items, err := f.Fetch(
		context.Background(),
		domain.ChatFeed{ID: 5, URL: TelegramChannelCanonicalURL("example_channel")},
		since,
	)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if title != "Example Channel" {
		t.Fatalf("unexpected title: %q", title)
	}

	if len(items) != 1 || items[0].URL != "https://t.me/example_channel/2" || items[0].Text != "Globex opens a lab." {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestFindValidFeeds(t *testing.T) {
	f, srv := newTestFetcher(t)

	// httptest serves plain http; the https matcher only sees the Telegram mention.
	text := "watch @example_channel and " + srv.URL + "/feed.xml please"

	feeds, err := f.FindValidFeeds(context.Background(), text)
	if err != nil {
		t.Fatalf("find feeds: %v", err)
	}

	if len(feeds) != 1 {
		t.Fatalf("expected one feed, got %+v", feeds)
	}

	if feeds[0].URL != "https://t.me/s/example_channel" || feeds[0].Title != "Example Channel" {
		t.Fatalf("unexpected feed: %+v", feeds[0])
	}
}

func TestIsTelegramChannelURL(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		slug string
	}{
		{"https://t.me/s/example_channel", true, "example_channel"},
		{"https://t.me/example_channel/12", true, "example_channel"},
		{"https://t.me/s/", false, ""},
		{"https://t.me/abc", false, ""},
		{"https://example.com/s/example_channel", false, ""},
	}

	for _, tt := range tests {
		ok, slug := isTelegramChannelURL(tt.raw)
		if ok != tt.ok || slug != tt.slug {
			t.Fatalf("isTelegramChannelURL(%q) = %v, %q", tt.raw, ok, slug)
		}
	}
}
