// Package post extracts post text from HTML pages.
package post

import (
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNoPosts = errors.New("no posts found")

	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	spacesRe     = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// Post is the text of a single post on a page.
type Post struct {
	ID   string
	URL  string
	Text string
}

// HTMLToText converts an HTML fragment to plain text, keeping line breaks.
func HTMLToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return normalizeText(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalizeText(fragment)
	}

	return selectionText(doc.Selection)
}

// selectionText returns the visible text of s with <br> and block ends as newlines.
func selectionText(s *goquery.Selection) string {
	s = s.Clone()
	s.Find("script, style").Remove()
	s.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})
	s.Find("p, div, li, h1, h2, h3, h4, blockquote").Each(func(_ int, block *goquery.Selection) {
		block.AppendHtml("\n\n")
	})

	return normalizeText(s.Text())
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
	}

	return strings.TrimSpace(blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func newDocument(r io.Reader, pageURL string) (*goquery.Document, *url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, err
	}

	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		u = &url.URL{}
	}

	return doc, u, nil
}
