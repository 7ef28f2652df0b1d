package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"postsummarizer/internal/settings"
)

const nameOllama = "Ollama"

// LocalRawProvider calls a local Ollama server with a single raw prompt.
type LocalRawProvider struct {
	settings   settings.Settings
	httpClient *http.Client
	endpoint   string
	log        *slog.Logger
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int64   `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response   *string         `json:"response"`
	Thinking   string          `json:"thinking"`
	DoneReason string          `json:"done_reason"`
	Error      json.RawMessage `json:"error"`
}

func newLocalRawProvider(s settings.Settings, o options) *LocalRawProvider {
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(s.OllamaURL, "/")
	}
	if baseURL == "" {
		baseURL = settings.DefaultOllamaURL
	}

	return &LocalRawProvider{
		settings:   s,
		httpClient: o.httpClient,
		endpoint:   baseURL + "/api/generate",
		log:        o.log,
	}
}

func (p *LocalRawProvider) Name() string {
	return nameOllama
}

func (p *LocalRawProvider) Summarize(ctx context.Context, postText string) (string, error) {
	if strings.TrimSpace(postText) == "" {
		return "", errEmptyPost
	}

	gen := generationFor(p.settings, false)

	body, err := postJSON(
		ctx,
		p.httpClient,
		nameOllama,
		p.endpoint,
		nil,
		generateRequest{
			Model:  p.settings.Model,
			Prompt: systemPrompt(p.settings) + "\n\n" + WrapPost(postText),
			Stream: false,
			Options: generateOptions{
				Temperature: gen.temperature,
				NumPredict:  gen.maxTokens,
			},
		},
	)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedPayloadError{Provider: nameOllama, Reason: err.Error()}
	}

	upstreamErr := upstreamErrorMessage(resp.Error)
	if resp.Response == nil && resp.Thinking == "" && upstreamErr == "" {
		return "", &MalformedPayloadError{Provider: nameOllama, Reason: "missing response field"}
	}

	return resolve(
		ctx,
		p.log,
		summaryTarget{provider: nameOllama, model: p.settings.Model, maxTokens: gen.maxTokens},
		completion{
			content:      deref(resp.Response),
			reasoning:    resp.Thinking,
			finishReason: resp.DoneReason,
			upstreamErr:  upstreamErr,
		},
	)
}
