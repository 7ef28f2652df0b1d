package post

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Channel is the public preview page of a Telegram channel.
type Channel struct {
	Title string
	Posts []ChannelPost
}

type ChannelPost struct {
	Post

	Published time.Time
}

// MessageCanonicalURL drops the query and fragment of a message link.
func MessageCanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

// ParseTelegramChannel reads the posts of a t.me/s/<channel> page.
// Posts that cannot be read are reported in the joined error; the rest are returned.
func ParseTelegramChannel(r io.Reader) (Channel, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Channel{}, fmt.Errorf("create document from reader: %w", err)
	}

	var (
		ch   Channel
		errs []error
	)

	doc.Find("a.tgme_widget_message_date").Each(func(_ int, s *goquery.Selection) {
		item, processErr := processMessageDate(s)
		if processErr != nil {
			errs = append(errs, fmt.Errorf("process found doc item: %w", processErr))
			return
		}

		ch.Posts = append(ch.Posts, item)
	})

	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		ch.Title = strings.TrimSpace(content)
	}

	if ch.Title == "" {
		ch.Title = strings.TrimSpace(doc.Find(".tgme_channel_info_header_title").Text())
	}

	return ch, errors.Join(errs...)
}

func processMessageDate(s *goquery.Selection) (ChannelPost, error) {
	href, ok := s.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ChannelPost{}, errors.New("href empty")
	}

	href = MessageCanonicalURL(href)

	var textBuilder strings.Builder
	message := s.ParentsFiltered(".tgme_widget_message").First()
	message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
		func(_ int, inner *goquery.Selection) {
			fragment := selectionText(inner)
			if fragment == "" {
				return
			}
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n")
			}
			textBuilder.WriteString(fragment)
		},
	)

	var published time.Time
	datetime := strings.TrimSpace(s.Find("time").AttrOr("datetime", ""))

	if datetime != "" {
		parsed, err := time.Parse(time.RFC3339, datetime)
		if err != nil {
			return ChannelPost{}, fmt.Errorf("parse datetime: %w", err)
		}
		published = parsed
	}

	return ChannelPost{
		Post: Post{
			ID:   message.AttrOr("data-post", href),
			URL:  href,
			Text: strings.TrimSpace(textBuilder.String()),
		},
		Published: published,
	}, nil
}
