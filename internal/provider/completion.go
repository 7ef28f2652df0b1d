package provider

import (
	"context"
	"log/slog"
	"strings"

	"postsummarizer/internal/extract"
)

const finishReasonLength = "length"

// completion is what a backend produced, before extraction.
type completion struct {
	content      string
	reasoning    string
	finishReason string
	upstreamErr  string
}

type summaryTarget struct {
	provider  string
	model     string
	maxTokens int64
}

// resolve turns a decoded completion into a summary or a typed error.
// Without usable text an upstream error wins over truncation, and truncation over emptiness.
func resolve(
	ctx context.Context,
	log *slog.Logger,
	target summaryTarget,
	c completion,
) (string, error) {
	text, ok := extract.EffectiveText(c.content, c.reasoning)
	if !ok {
		switch {
		case c.upstreamErr != "":
			return "", &UpstreamReportedError{Provider: target.provider, Message: c.upstreamErr}
		case strings.EqualFold(c.finishReason, finishReasonLength):
			return "", &TruncatedResponseError{Provider: target.provider, MaxTokens: target.maxTokens}
		default:
			return "", &EmptyResponseError{Provider: target.provider, Model: target.model}
		}
	}

	if strings.TrimSpace(c.content) == "" {
		log.DebugContext(
			ctx,
			"Content is empty, using reasoning trace",
			"provider", target.provider,
			"model", target.model,
		)
	}

	summary, rule := extract.ExtractWithRule(text)
	log.DebugContext(
		ctx,
		"Summary extracted",
		"provider", target.provider,
		"model", target.model,
		"rule", rule,
		"finish_reason", c.finishReason,
	)

	return summary, nil
}
