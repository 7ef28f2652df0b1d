// Package summarizer runs summarizations for the bot: one provider call per distinct
// post and settings, with finished summaries cached.
package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"postsummarizer/internal/cache"
	"postsummarizer/internal/provider"
	"postsummarizer/internal/settings"
)

const (
	DefaultTimeout  = 90 * time.Second
	DefaultCacheTTL = 24 * time.Hour
)

var ErrEmptyText = errors.New("text is empty")

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original plain text to summarise.
	Text string
	// SourceURL is only used for logging.
	SourceURL string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, s settings.Settings, input Input) (string, error)
}

// ProviderFactory builds the provider for a settings snapshot.
type ProviderFactory func(s settings.Settings) (provider.Provider, error)

type Service struct {
	newProvider ProviderFactory
	cache       cache.Cache
	cacheTTL    time.Duration
	timeout     time.Duration
	group       singleflight.Group
	log         *slog.Logger
}

type Option func(*Service)

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func New(newProvider ProviderFactory, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		newProvider: newProvider,
		cache:       cache.Noop{},
		cacheTTL:    DefaultCacheTTL,
		timeout:     DefaultTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Summarize returns the summary of input.Text made with settings s.
// Concurrent calls for the same text and settings share one provider call.
func (s *Service) Summarize(
	ctx context.Context,
	st settings.Settings,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", ErrEmptyText
	}

	key := cacheKey(st, text)

	if summary, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WarnContext(ctx, "Failed to read summary cache",
			"error", err,
			"sourceURL", input.SourceURL)
	} else if ok {
		return summary, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		// Callers sharing this call may give up; the call itself only stops at the timeout.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		return s.summarize(callCtx, st, text, input.SourceURL, key)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}

		summary, _ := res.Val.(string)

		return summary, nil
	}
}

func (s *Service) summarize(
	ctx context.Context,
	st settings.Settings,
	text string,
	sourceURL string,
	key string,
) (string, error) {
	p, err := s.newProvider(st)
	if err != nil {
		return "", fmt.Errorf("create provider: %w", err)
	}

	started := time.Now()

	summary, err := p.Summarize(ctx, text)

	var truncated *provider.TruncatedResponseError
	if errors.As(err, &truncated) {
		if retry, ok := widened(st, truncated.MaxTokens); ok {
			s.log.InfoContext(ctx, "Retrying truncated summary with more tokens",
				"provider", p.Name(),
				"model", st.Model,
				"maxTokens", retry.MaxTokens)

			if p, err = s.newProvider(retry); err != nil {
				return "", fmt.Errorf("create provider: %w", err)
			}

			summary, err = p.Summarize(ctx, text)
		}
	}

	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize post",
			"error", err,
			"provider", p.Name(),
			"model", st.Model,
			"sourceURL", sourceURL,
			"textLen", len(text),
			"duration", time.Since(started))

		return "", fmt.Errorf("summarize: %w", err)
	}

	s.log.InfoContext(ctx, "Post summarized",
		"provider", p.Name(),
		"model", st.Model,
		"sourceURL", sourceURL,
		"textLen", len(text),
		"summaryLen", len(summary),
		"duration", time.Since(started))

	if err = s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.log.WarnContext(ctx, "Failed to write summary cache",
			"error", err,
			"sourceURL", sourceURL)
	}

	return summary, nil
}

// widened doubles the token limit of a truncated request, up to the settings maximum.
// A limit the user chose is left alone.
func widened(st settings.Settings, used int64) (settings.Settings, bool) {
	if st.MaxTokens != 0 || used <= 0 || used >= settings.MaxMaxTokens {
		return st, false
	}

	st.MaxTokens = int(min(used*2, settings.MaxMaxTokens))

	return st, true
}

// cacheKey identifies a summary by everything that shapes it.
func cacheKey(st settings.Settings, text string) string {
	temperature := "default"
	if st.Temperature != nil {
		temperature = strconv.FormatFloat(*st.Temperature, 'f', -1, 64)
	}

	h := sha256.New()
	for _, part := range []string{
		string(st.Provider),
		st.Model,
		st.OllamaURL,
		strconv.Itoa(st.MaxTokens),
		temperature,
		st.SystemPrompt,
		strings.Join(strings.Fields(text), " "),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
