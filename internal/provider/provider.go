// Package provider implements the text-completion backends a post can be summarized with.
package provider

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"postsummarizer/internal/settings"
)

// DefaultSystemPrompt is used when the settings carry no system prompt of their own.
const DefaultSystemPrompt = `You summarize social media posts. Each post arrives as <post> text </post>.
Reply only in the format <response> summarized post </response>.
Do not add any commentary, preamble or explanation outside the tags.
Keep every company and person name mentioned in the post.`

const (
	defaultMaxTokens   int64 = 300
	defaultTemperature       = 0.3

	defaultTitle   = "Post Summarizer"
	defaultReferer = "http://localhost"
)

// Provider summarizes a single post with one backend call.
type Provider interface {
	Summarize(ctx context.Context, postText string) (string, error)
	Name() string
}

type options struct {
	httpClient *http.Client
	baseURL    string
	referer    string
	title      string
	log        *slog.Logger
}

type Option func(*options)

// WithHTTPClient replaces the HTTP client used for the backend call.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithBaseURL overrides the fixed endpoint of the remote providers and the Ollama URL
// of the local one.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(strings.TrimSpace(u), "/")
	}
}

// WithReferer sets the HTTP-Referer sent to OpenRouter.
func WithReferer(referer string) Option {
	return func(o *options) {
		if referer = strings.TrimSpace(referer); referer != "" {
			o.referer = referer
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// New builds the provider selected by s.Provider.
func New(s settings.Settings, opts ...Option) (Provider, error) {
	o := options{
		httpClient: http.DefaultClient,
		referer:    defaultReferer,
		title:      defaultTitle,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch s.Provider {
	case settings.ProviderOpenAI:
		return newDirectChatProvider(s, o), nil
	case settings.ProviderOpenRouter:
		return newReasoningCapableProvider(s, o), nil
	case settings.ProviderOllama:
		return newLocalRawProvider(s, o), nil
	default:
		return nil, &UnknownProviderError{Provider: string(s.Provider)}
	}
}

// WrapPost puts the post into the delimiters the system prompt describes.
func WrapPost(text string) string {
	return "<post>" + text + "</post>"
}

func systemPrompt(s settings.Settings) string {
	if prompt := strings.TrimSpace(s.SystemPrompt); prompt != "" {
		return prompt
	}

	return DefaultSystemPrompt
}
