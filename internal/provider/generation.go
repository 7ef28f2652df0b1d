package provider

import (
	"strings"

	"postsummarizer/internal/settings"
)

const (
	reasoningMaxTokens   int64 = 500
	reasoningTemperature       = 0.1
)

// Model ids known to emit a reasoning trace. Matched as case-insensitive substrings.
//
//nolint:gochecknoglobals // Immutable lookup table.
var knownReasoningModels = []string{
	"deepseek/deepseek-r1",
	"deepseek-r1",
	"deepseek-reasoner",
	"openai/o1",
	"openai/o3",
	"openai/o4-mini",
	"qwen/qwq",
	"qwq-32b",
	"microsoft/phi-4-reasoning",
	"perplexity/sonar-reasoning",
	"anthropic/claude-3.7-sonnet:thinking",
	"google/gemini-2.0-flash-thinking",
}

// IsReasoningModel reports whether model is expected to think before answering.
func IsReasoningModel(model string) bool {
	id := strings.ToLower(strings.TrimSpace(model))
	if id == "" {
		return false
	}

	for _, known := range knownReasoningModels {
		if strings.Contains(id, known) {
			return true
		}
	}

	// Drop OpenRouter variant suffixes such as ":free" before the suffix check.
	base, _, _ := strings.Cut(id, ":")

	return strings.Contains(id, "reasoning") || strings.HasSuffix(base, "-r1")
}

type generation struct {
	maxTokens   int64
	temperature float64
}

// generationFor fills unset parameters with defaults. Reasoning traces use up more
// tokens and do better with near-deterministic sampling, so they get their own.
func generationFor(s settings.Settings, reasoning bool) generation {
	g := generation{
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	if reasoning {
		g.maxTokens = reasoningMaxTokens
		g.temperature = reasoningTemperature
	}

	if s.MaxTokens > 0 {
		g.maxTokens = int64(s.MaxTokens)
	}
	if s.Temperature != nil {
		g.temperature = *s.Temperature
	}

	return g
}
