package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"postsummarizer/internal/settings"
)

const (
	nameOpenRouter    = "OpenRouter"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// ReasoningCapableProvider calls OpenRouter. Reasoning models may answer in a separate
// reasoning field, which is used when the content is empty.
type ReasoningCapableProvider struct {
	settings   settings.Settings
	httpClient *http.Client
	endpoint   string
	referer    string
	title      string
	log        *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int64         `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content   *string `json:"content"`
			Reasoning *string `json:"reasoning"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

func newReasoningCapableProvider(s settings.Settings, o options) *ReasoningCapableProvider {
	baseURL := openRouterBaseURL
	if o.baseURL != "" {
		baseURL = o.baseURL
	}

	return &ReasoningCapableProvider{
		settings:   s,
		httpClient: o.httpClient,
		endpoint:   baseURL + "/chat/completions",
		referer:    o.referer,
		title:      o.title,
		log:        o.log,
	}
}

func (p *ReasoningCapableProvider) Name() string {
	return nameOpenRouter
}

func (p *ReasoningCapableProvider) Summarize(ctx context.Context, postText string) (string, error) {
	if strings.TrimSpace(postText) == "" {
		return "", errEmptyPost
	}

	gen := generationFor(p.settings, IsReasoningModel(p.settings.Model))

	body, err := postJSON(
		ctx,
		p.httpClient,
		nameOpenRouter,
		p.endpoint,
		map[string]string{
			"Authorization": "Bearer " + p.settings.APIKey,
			"HTTP-Referer":  p.referer,
			"X-Title":       p.title,
		},
		chatRequest{
			Model: p.settings.Model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt(p.settings)},
				{Role: "user", Content: WrapPost(postText)},
			},
			MaxTokens:   gen.maxTokens,
			Temperature: gen.temperature,
		},
	)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedPayloadError{Provider: nameOpenRouter, Reason: err.Error()}
	}

	upstreamErr := upstreamErrorMessage(resp.Error)

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		if upstreamErr != "" {
			return "", &UpstreamReportedError{Provider: nameOpenRouter, Message: upstreamErr}
		}

		return "", &MalformedPayloadError{Provider: nameOpenRouter, Reason: "missing choices[0].message"}
	}

	choice := resp.Choices[0]

	return resolve(
		ctx,
		p.log,
		summaryTarget{provider: nameOpenRouter, model: p.settings.Model, maxTokens: gen.maxTokens},
		completion{
			content:      deref(choice.Message.Content),
			reasoning:    deref(choice.Message.Reasoning),
			finishReason: choice.FinishReason,
			upstreamErr:  upstreamErr,
		},
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
