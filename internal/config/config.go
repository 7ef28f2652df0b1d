package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"postsummarizer/internal/settings"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                 envDefault:"db.sqlite"`
	LogLevel     string  `env:"LOG_LEVEL"               envDefault:"info"`

	// Settings new chats start with.
	Provider      string   `env:"PROVIDER"       envDefault:"openai"`
	Model         string   `env:"MODEL"          envDefault:"gpt-3.5-turbo"`
	APIKey        string   `env:"API_KEY"`
	OllamaURL     string   `env:"OLLAMA_URL"     envDefault:"http://localhost:11434"`
	MaxTokens     int      `env:"MAX_TOKENS"`
	Temperature   *float64 `env:"TEMPERATURE"`
	SystemPrompt  string   `env:"SYSTEM_PROMPT"`
	AutoSummarize bool     `env:"AUTO_SUMMARIZE"`
	AppURL        string   `env:"APP_URL"`

	CacheBackend     string        `env:"CACHE_BACKEND"     envDefault:"memory"`
	CacheSize        int           `env:"CACHE_SIZE"        envDefault:"1024"`
	RedisAddr        string        `env:"REDIS_ADDR"        envDefault:"localhost:6379"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	CacheTTL         time.Duration `env:"CACHE_TTL"         envDefault:"24h"`
	SummarizeTimeout time.Duration `env:"SUMMARIZE_TIMEOUT" envDefault:"90s"`
	WatchSpec        string        `env:"WATCH_SPEC"        envDefault:"*/15 * * * *"`
}

func LoadConfig() Config {
	return env.Must(Parse())
}

func Parse() (Config, error) {
	return env.ParseAs[Config]()
}

// DefaultSettings returns the summarization settings of a chat that has not changed any.
func (c Config) DefaultSettings() settings.Settings {
	return settings.Settings{
		Provider:      settings.Provider(c.Provider),
		Model:         c.Model,
		APIKey:        c.APIKey,
		OllamaURL:     c.OllamaURL,
		MaxTokens:     c.MaxTokens,
		Temperature:   c.Temperature,
		SystemPrompt:  c.SystemPrompt,
		AutoSummarize: c.AutoSummarize,
	}.Normalize()
}
