package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"postsummarizer/internal/settings"
)

const (
	nameOpenAI    = "OpenAI"
	openAIBaseURL = "https://api.openai.com/v1/"
)

// DirectChatProvider calls the OpenAI chat completions endpoint.
type DirectChatProvider struct {
	settings settings.Settings
	client   openai.Client
	log      *slog.Logger
}

func newDirectChatProvider(s settings.Settings, o options) *DirectChatProvider {
	baseURL := openAIBaseURL
	if o.baseURL != "" {
		baseURL = o.baseURL + "/"
	}

	client := openai.NewClient(
		option.WithAPIKey(s.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	)

	return &DirectChatProvider{
		settings: s,
		client:   client,
		log:      o.log,
	}
}

func (p *DirectChatProvider) Name() string {
	return nameOpenAI
}

func (p *DirectChatProvider) Summarize(ctx context.Context, postText string) (string, error) {
	if strings.TrimSpace(postText) == "" {
		return "", errEmptyPost
	}

	gen := generationFor(p.settings, false)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(p.settings)),
			openai.UserMessage(WrapPost(postText)),
		},
		MaxTokens:   openai.Int(gen.maxTokens),
		Temperature: openai.Float(gen.temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", newTransportError(nameOpenAI, apiErr.StatusCode, apiErr.Message)
		}

		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedPayloadError{Provider: nameOpenAI, Reason: "no choices in response"}
	}

	choice := resp.Choices[0]

	return resolve(
		ctx,
		p.log,
		summaryTarget{provider: nameOpenAI, model: p.settings.Model, maxTokens: gen.maxTokens},
		completion{
			content:      choice.Message.Content,
			finishReason: choice.FinishReason,
			upstreamErr:  strings.TrimSpace(choice.Message.Refusal),
		},
	)
}
