package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"postsummarizer/internal/markdown"
	"postsummarizer/internal/settings"
)

const welcomeText = `🤖 *Welcome to Post Summarizer\!*

Send me the text of any post and I will reply with a short summary\. Tap *Show original* under a summary to switch back and forth\.

Settings:
– /settings shows the current settings
– /provider openai, openrouter or ollama
– /model sets the model id
– /key sets the API key
– /ollama sets the Ollama URL
– /maxtokens 50\-2000 or default
– /temperature 0\-1 or default
– /prompt sets the system prompt or default
– /auto on or off summarizes watched posts right away

Feeds:
– /watch follows RSS / Atom / JSON feeds and public Telegram channels by URL or @username
– /list shows watched feeds`

// settingUpdate applies a command argument to settings. The returned text confirms the change.
type settingUpdate func(s *settings.Settings, arg string) (string, error)

//nolint:gochecknoglobals // Command table, never mutated.
var settingCommands = map[string]settingUpdate{
	"/provider":    setProvider,
	"/model":       setModel,
	"/key":         setAPIKey,
	"/ollama":      setOllamaURL,
	"/maxtokens":   setMaxTokens,
	"/temperature": setTemperature,
	"/prompt":      setSystemPrompt,
	"/auto":        setAutoSummarize,
}

var errMissingArgument = errors.New("missing argument")

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	_, err := b.sendMessage(ctx, chatID, welcomeText, nil)
	return err
}

func (b *Bot) handleSettingsCommand(ctx context.Context, chatID int64) error {
	st, err := b.db.GetChatSettingsWithDefault(ctx, chatID, b.defaults)
	if err != nil {
		errs := []error{fmt.Errorf("get chat settings: %w", err)}

		if _, sendErr := b.sendMessage(ctx, chatID, "❌ Failed\\.", nil); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	_, err = b.sendMessage(ctx, chatID, renderSettings(st), nil)

	return err
}

func (b *Bot) handleSettingCommand(
	ctx context.Context,
	chatID int64,
	update settingUpdate,
	arg string,
) error {
	st, err := b.db.GetChatSettingsWithDefault(ctx, chatID, b.defaults)
	if err != nil {
		return fmt.Errorf("get chat settings: %w", err)
	}

	confirmation, err := update(&st, strings.TrimSpace(arg))
	if err != nil {
		text := "✖️ " + markdown.EscapeV2(err.Error())
		if errors.Is(err, errMissingArgument) {
			text = "✖️ This command needs a value\\. See /start"
		}

		_, sendErr := b.sendMessage(ctx, chatID, text, nil)

		return sendErr
	}

	if err = b.db.UpsertChatSettings(ctx, chatID, st.Normalize()); err != nil {
		errs := []error{fmt.Errorf("upsert chat settings: %w", err)}

		if _, sendErr := b.sendMessage(ctx, chatID, "❌ Failed\\.", nil); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	text := "✅ " + markdown.EscapeV2(confirmation)
	for _, warning := range st.Warnings() {
		text += "\n⚠️ " + markdown.EscapeV2(warning)
	}

	_, err = b.sendMessage(ctx, chatID, text, nil)

	return err
}

func renderSettings(st settings.Settings) string {
	var b strings.Builder

	b.WriteString("*⚙️ Settings*\n\n")
	writeSetting(&b, "Provider", string(st.Provider))
	writeSetting(&b, "Model", st.Model)

	if st.Provider == settings.ProviderOllama {
		writeSetting(&b, "Ollama URL", st.OllamaURL)
	} else {
		key := "not set"
		if st.APIKey != "" {
			key = st.MaskedAPIKey()
		}
		writeSetting(&b, "API key", key)
	}

	maxTokens := "default"
	if st.MaxTokens > 0 {
		maxTokens = strconv.Itoa(st.MaxTokens)
	}
	writeSetting(&b, "Max tokens", maxTokens)

	temperature := "default"
	if st.Temperature != nil {
		temperature = strconv.FormatFloat(*st.Temperature, 'f', -1, 64)
	}
	writeSetting(&b, "Temperature", temperature)

	prompt := "default"
	if st.SystemPrompt != "" {
		prompt = truncateRunes(st.SystemPrompt, 200)
	}
	writeSetting(&b, "Prompt", prompt)

	auto := "off"
	if st.AutoSummarize {
		auto = "on"
	}
	writeSetting(&b, "Auto-summarize", auto)

	if err := st.Validate(); err != nil {
		var validationErr *settings.ValidationError
		if errors.As(err, &validationErr) {
			b.WriteString("\n")
			for _, problem := range validationErr.Problems {
				b.WriteString("⚠️ " + markdown.EscapeV2(problem) + "\n")
			}
		}
	}

	for _, warning := range st.Warnings() {
		b.WriteString("⚠️ " + markdown.EscapeV2(warning) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeSetting(b *strings.Builder, name string, value string) {
	b.WriteString(fmt.Sprintf("%s: `%s`\n", markdown.EscapeV2(name), markdown.EscapeV2(value)))
}

func setProvider(s *settings.Settings, arg string) (string, error) {
	p := settings.Provider(strings.ToLower(arg))

	switch p {
	case settings.ProviderOpenAI, settings.ProviderOpenRouter, settings.ProviderOllama:
	case "":
		return "", errMissingArgument
	default:
		return "", fmt.Errorf("unknown provider %q, use openai, openrouter or ollama", arg)
	}

	s.Provider = p
	if p == settings.ProviderOllama && s.OllamaURL == "" {
		s.OllamaURL = settings.DefaultOllamaURL
	}

	return "Provider is set to " + string(p) + ".", nil
}

func setModel(s *settings.Settings, arg string) (string, error) {
	if arg == "" {
		return "", errMissingArgument
	}

	s.Model = arg

	return "Model is set to " + arg + ".", nil
}

func setAPIKey(s *settings.Settings, arg string) (string, error) {
	if arg == "" {
		return "", errMissingArgument
	}

	s.APIKey = arg

	return "API key is set to " + s.MaskedAPIKey() + ".", nil
}

func setOllamaURL(s *settings.Settings, arg string) (string, error) {
	if arg == "" {
		return "", errMissingArgument
	}

	next := *s
	next.OllamaURL = arg
	next.Provider = settings.ProviderOllama
	if err := next.Validate(); err != nil && strings.Contains(err.Error(), "Ollama URL") {
		return "", errors.New("Ollama URL must be a valid URL")
	}

	s.OllamaURL = arg

	return "Ollama URL is set to " + arg + ".", nil
}

func setMaxTokens(s *settings.Settings, arg string) (string, error) {
	if arg == "" {
		return "", errMissingArgument
	}

	if strings.EqualFold(arg, "default") {
		s.MaxTokens = 0
		return "Max tokens are reset to the provider default.", nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < settings.MinMaxTokens || n > settings.MaxMaxTokens {
		return "", fmt.Errorf("max tokens must be between %d and %d", settings.MinMaxTokens, settings.MaxMaxTokens)
	}

	s.MaxTokens = n

	return fmt.Sprintf("Max tokens are set to %d.", n), nil
}

func setTemperature(s *settings.Settings, arg string) (string, error) {
	if arg == "" {
		return "", errMissingArgument
	}

	if strings.EqualFold(arg, "default") {
		s.Temperature = nil
		return "Temperature is reset to the provider default.", nil
	}

	t, err := strconv.ParseFloat(strings.ReplaceAll(arg, ",", "."), 64)
	if err != nil || math.IsNaN(t) || t < settings.MinTemperature || t > settings.MaxTemperature {
		return "", errors.New("temperature must be between 0 and 1")
	}

	s.Temperature = settings.Float(t)

	return "Temperature is set to " + strconv.FormatFloat(t, 'f', -1, 64) + ".", nil
}

func setSystemPrompt(s *settings.Settings, arg string) (string, error) {
	if arg == "" {
		return "", errMissingArgument
	}

	if strings.EqualFold(arg, "default") {
		s.SystemPrompt = ""
		return "Prompt is reset to the default.", nil
	}

	s.SystemPrompt = arg

	return "Prompt is updated.", nil
}

func setAutoSummarize(s *settings.Settings, arg string) (string, error) {
	switch strings.ToLower(arg) {
	case "on", "yes", "true", "1":
		s.AutoSummarize = true
		return "Watched posts are summarized automatically.", nil
	case "off", "no", "false", "0":
		s.AutoSummarize = false
		return "Watched posts come with a Summarize button.", nil
	case "":
		return "", errMissingArgument
	default:
		return "", errors.New("use /auto on or /auto off")
	}
}
