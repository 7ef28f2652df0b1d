package summarizer_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"postsummarizer/internal/cache"
	"postsummarizer/internal/provider"
	"postsummarizer/internal/settings"
	"postsummarizer/internal/summarizer"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Summarize(ctx context.Context, postText string) (string, error) {
	args := m.Called(ctx, postText)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Name() string {
	return "mock"
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testSettings() settings.Settings {
	return settings.Settings{Provider: settings.ProviderOpenAI, Model: "gpt-3.5-turbo", APIKey: "sk-test"}
}

func TestSummarizeRejectsEmptyText(t *testing.T) {
	svc := summarizer.New(func(settings.Settings) (provider.Provider, error) {
		t.Fatalf("provider must not be built for empty text")
		return nil, nil
	}, discard())

	_, err := svc.Summarize(context.Background(), testSettings(), summarizer.Input{Text: " \n "})
	require.ErrorIs(t, err, summarizer.ErrEmptyText)
}

func TestSummarizeUsesCache(t *testing.T) {
	p := &mockProvider{}
	p.On("Summarize", mock.Anything, "Acme Corp is hiring.").Return("Acme hires.", nil).Once()

	svc := summarizer.New(
		func(settings.Settings) (provider.Provider, error) { return p, nil },
		discard(),
		summarizer.WithCache(cache.NewMemory(8), time.Hour),
	)

	ctx := context.Background()
	for range 3 {
		got, err := svc.Summarize(ctx, testSettings(), summarizer.Input{Text: "  Acme Corp is hiring.  "})
		require.NoError(t, err)
		assert.Equal(t, "Acme hires.", got)
	}

	p.AssertExpectations(t)
}

func TestSummarizeCacheKeyFollowsSettings(t *testing.T) {
	p := &mockProvider{}
	p.On("Summarize", mock.Anything, "Acme Corp is hiring.").Return("Acme hires.", nil).Twice()

	svc := summarizer.New(
		func(settings.Settings) (provider.Provider, error) { return p, nil },
		discard(),
		summarizer.WithCache(cache.NewMemory(8), time.Hour),
	)

	ctx := context.Background()
	other := testSettings()
	other.Model = "gpt-4o-mini"

	_, err := svc.Summarize(ctx, testSettings(), summarizer.Input{Text: "Acme Corp is hiring."})
	require.NoError(t, err)
	_, err = svc.Summarize(ctx, other, summarizer.Input{Text: "Acme Corp is hiring."})
	require.NoError(t, err)

	p.AssertExpectations(t)
}

type blockingProvider struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingProvider) Summarize(context.Context, string) (string, error) {
	b.calls.Add(1)
	<-b.release

	return "shared", nil
}

func (b *blockingProvider) Name() string {
	return "blocking"
}

func TestSummarizeSharesInFlightCalls(t *testing.T) {
	p := &blockingProvider{release: make(chan struct{})}
	svc := summarizer.New(func(settings.Settings) (provider.Provider, error) { return p, nil }, discard())

	const callers = 5

	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([]string, callers)
	)

	started.Add(callers)
	for i := range callers {
		wg.Go(func() {
			started.Done()
			got, err := svc.Summarize(context.Background(), testSettings(), summarizer.Input{Text: "same post"})
			if err != nil {
				t.Errorf("summarize: %v", err)
			}
			results[i] = got
		})
	}

	started.Wait()
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Give the remaining callers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(p.release)
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
	for _, got := range results {
		assert.Equal(t, "shared", got)
	}
}

func TestSummarizeRetriesTruncatedWithMoreTokens(t *testing.T) {
	var seen []int

	svc := summarizer.New(func(s settings.Settings) (provider.Provider, error) {
		seen = append(seen, s.MaxTokens)

		p := &mockProvider{}
		if s.MaxTokens == 0 {
			p.On("Summarize", mock.Anything, mock.Anything).
				Return("", &provider.TruncatedResponseError{Provider: "mock", MaxTokens: 300})
		} else {
			p.On("Summarize", mock.Anything, mock.Anything).Return("done", nil)
		}

		return p, nil
	}, discard())

	got, err := svc.Summarize(context.Background(), testSettings(), summarizer.Input{Text: "long post"})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, []int{0, 600}, seen)
}

func TestSummarizeKeepsExplicitTokenLimit(t *testing.T) {
	p := &mockProvider{}
	p.On("Summarize", mock.Anything, mock.Anything).
		Return("", &provider.TruncatedResponseError{Provider: "mock", MaxTokens: 100}).Once()

	st := testSettings()
	st.MaxTokens = 100

	svc := summarizer.New(func(settings.Settings) (provider.Provider, error) { return p, nil }, discard())

	_, err := svc.Summarize(context.Background(), st, summarizer.Input{Text: "long post"})

	var truncated *provider.TruncatedResponseError
	require.ErrorAs(t, err, &truncated)
	p.AssertExpectations(t)
}

func TestSummarizeFactoryError(t *testing.T) {
	svc := summarizer.New(func(s settings.Settings) (provider.Provider, error) {
		return provider.New(s)
	}, discard())

	st := testSettings()
	st.Provider = "bogus"

	_, err := svc.Summarize(context.Background(), st, summarizer.Input{Text: "post"})

	var unknown *provider.UnknownProviderError
	require.ErrorAs(t, err, &unknown)
}

func TestSummarizeHonorsCallerCancellation(t *testing.T) {
	p := &blockingProvider{release: make(chan struct{})}
	defer close(p.release)

	svc := summarizer.New(func(settings.Settings) (provider.Provider, error) { return p, nil }, discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Summarize(ctx, testSettings(), summarizer.Input{Text: "post"})
	require.True(t, errors.Is(err, context.Canceled))
}
