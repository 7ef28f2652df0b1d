package post

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	linkedInPostSelector = `[data-urn*="activity:"], .feed-shared-update-v2, .occludable-update`
	linkedInTextSelector = ".feed-shared-update-v2__description, .feed-shared-text, " +
		".update-components-text, .feed-shared-update-v2__commentary"

	// Nodes a previous summarization run added to the page.
	injectedSelector = ".lps-action-button, .lps-summary"

	linkedInPostURLPrefix = "https://www.linkedin.com/feed/update/"
)

// ParseLinkedIn returns every post with text found on a LinkedIn page.
func ParseLinkedIn(r io.Reader, pageURL string) ([]Post, error) {
	doc, u, err := newDocument(r, pageURL)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	var (
		posts []Post
		seen  = make(map[string]struct{})
	)

	doc.Find(linkedInPostSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested matches belong to the outermost post.
		if s.ParentsFiltered(linkedInPostSelector).Length() > 0 {
			return
		}

		text := linkedInPostText(s)
		if text == "" {
			return
		}

		id := strings.TrimSpace(s.AttrOr("data-urn", ""))
		if id == "" {
			id = strings.TrimSpace(s.Find("[data-urn]").First().AttrOr("data-urn", ""))
		}

		postURL := pageURL
		if id != "" && strings.HasPrefix(id, "urn:li:activity:") {
			postURL = linkedInPostURLPrefix + id + "/"
		}
		if id == "" {
			id = u.Path
		}

		key := id + "|" + text
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}

		posts = append(posts, Post{ID: id, URL: postURL, Text: text})
	})

	if len(posts) == 0 {
		return nil, ErrNoPosts
	}

	return posts, nil
}

func linkedInPostText(s *goquery.Selection) string {
	s = s.Clone()
	s.Find(injectedSelector).Remove()

	container := s.Find(linkedInTextSelector).First()
	if container.Length() == 0 {
		return ""
	}

	return selectionText(container)
}
