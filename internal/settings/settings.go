// Package settings holds the per-chat summarization settings snapshot and its validation.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
)

const (
	DefaultProvider  = ProviderOpenAI
	DefaultModel     = "gpt-3.5-turbo"
	DefaultOllamaURL = "http://localhost:11434"

	MinMaxTokens   = 50
	MaxMaxTokens   = 2000
	MinTemperature = 0.0
	MaxTemperature = 1.0

	openRouterKeyPrefix = "sk-or"
)

// Settings is an immutable snapshot handed to a provider for one request.
// Zero MaxTokens and nil Temperature mean "not set"; providers apply their own defaults.
type Settings struct {
	Provider      Provider `validate:"required,oneof=openai openrouter ollama"`
	Model         string   `validate:"required"`
	APIKey        string   `validate:"required_unless=Provider ollama"`
	OllamaURL     string   `validate:"required_if=Provider ollama,omitempty,url"`
	MaxTokens     int      `validate:"omitempty,min=50,max=2000"`
	Temperature   *float64 `validate:"omitempty,min=0,max=1"`
	SystemPrompt  string
	AutoSummarize bool
}

// ValidationError lists every problem found in a settings snapshot.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

//nolint:gochecknoglobals // Validator caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

func Default() Settings {
	return Settings{
		Provider:  DefaultProvider,
		Model:     DefaultModel,
		OllamaURL: DefaultOllamaURL,
	}
}

// Normalize returns a copy with surrounding whitespace removed from text fields.
func (s Settings) Normalize() Settings {
	s.Provider = Provider(strings.ToLower(strings.TrimSpace(string(s.Provider))))
	s.Model = strings.TrimSpace(s.Model)
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.OllamaURL = strings.TrimRight(strings.TrimSpace(s.OllamaURL), "/")
	s.SystemPrompt = strings.TrimSpace(s.SystemPrompt)

	if s.Temperature != nil {
		t := *s.Temperature
		s.Temperature = &t
	}

	return s
}

// Validate checks s and returns a *ValidationError describing every invalid field.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate settings: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, s.problem(fe))
	}

	return &ValidationError{Problems: problems}
}

func (s Settings) problem(fe validator.FieldError) string {
	switch fe.Field() {
	case "Provider":
		return fmt.Sprintf("Unknown provider %q (use openai, openrouter or ollama)", s.Provider)
	case "Model":
		return "Please enter a model name"
	case "APIKey":
		return "Please enter an API key"
	case "OllamaURL":
		if fe.Tag() == "url" {
			return "Ollama URL must be a valid URL"
		}
		return "Please enter Ollama URL"
	case "MaxTokens":
		return fmt.Sprintf("Max tokens must be between %d and %d", MinMaxTokens, MaxMaxTokens)
	case "Temperature":
		return fmt.Sprintf("Temperature must be between %g and %g", MinTemperature, MaxTemperature)
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// Warnings reports suspicious but accepted values.
func (s Settings) Warnings() []string {
	var warnings []string

	if s.Provider == ProviderOpenRouter && s.APIKey != "" && !strings.HasPrefix(s.APIKey, openRouterKeyPrefix) {
		warnings = append(warnings, fmt.Sprintf("OpenRouter API keys usually start with %q", openRouterKeyPrefix))
	}

	return warnings
}

// MaskedAPIKey hides all but the edges of the key for display.
func (s Settings) MaskedAPIKey() string {
	key := s.APIKey
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return strings.Repeat("•", len(key))
	default:
		return key[:4] + "…" + key[len(key)-4:]
	}
}

func Float(v float64) *float64 {
	return &v
}
