package provider

import (
	"strings"
	"testing"

	"postsummarizer/internal/settings"
)

func TestIsReasoningModel(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"deepseek/deepseek-r1", true},
		{"DeepSeek/DeepSeek-R1:free", true},
		{"deepseek/deepseek-r1-distill-llama-70b", true},
		{"qwen/qwq-32b", true},
		{"microsoft/phi-4-reasoning-plus", true},
		{"some/new-model-r1", true},
		{"some/new-model-r1:free", true},
		{"openai/gpt-4o-mini", false},
		{"gpt-3.5-turbo", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsReasoningModel(tt.model); got != tt.want {
			t.Fatalf("IsReasoningModel(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestGenerationFor(t *testing.T) {
	if g := generationFor(settings.Settings{}, false); g.maxTokens != 300 || g.temperature != 0.3 {
		t.Fatalf("unexpected defaults: %+v", g)
	}

	if g := generationFor(settings.Settings{}, true); g.maxTokens != 500 || g.temperature != 0.1 {
		t.Fatalf("unexpected reasoning defaults: %+v", g)
	}

	g := generationFor(settings.Settings{MaxTokens: 120, Temperature: settings.Float(0.7)}, true)
	if g.maxTokens != 120 || g.temperature != 0.7 {
		t.Fatalf("expected explicit params to win: %+v", g)
	}
}

func TestErrorBodyMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":{"message":"bad key"}}`, "bad key"},
		{`{"error":"model not found"}`, "model not found"},
		{`plain text`, "plain text"},
		{strings.Repeat("ж", maxErrorBodyChars+10), strings.Repeat("ж", maxErrorBodyChars) + "…"},
	}

	for _, tt := range tests {
		if got := errorBodyMessage([]byte(tt.body)); got != tt.want {
			t.Fatalf("errorBodyMessage(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
