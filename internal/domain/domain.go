package domain

import "time"

type Feed struct {
	URL   string
	Title string
}

// ChatFeed is a feed watched by one chat.
type ChatFeed struct {
	ID     int64
	ChatID int64
	URL    string
	Title  string
}

// Item is one post read from a watched feed.
type Item struct {
	FeedID    int64
	FeedTitle string
	URL       string
	Title     string
	Text      string
	Published time.Time
}

type SummaryView string

const (
	ViewSummary  SummaryView = "summary"
	ViewOriginal SummaryView = "original"
)

// Summary is a delivered summary together with the post it was made from.
// Summary is empty until the post has been summarized.
type Summary struct {
	ID        string
	ChatID    int64
	MessageID int
	SourceURL string
	Original  string
	Summary   string
	View      SummaryView
	CreatedAt time.Time
}

// Toggle returns the view the message switches to.
func (v SummaryView) Toggle() SummaryView {
	if v == ViewOriginal {
		return ViewSummary
	}

	return ViewOriginal
}
