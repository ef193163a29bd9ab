package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderNone   LLMProvider = ""
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// Sample data
	InstagramPath string `env:"INSTAGRAM_PATH" envDefault:"data/instagram_sample.csv"`
	TwitterPath   string `env:"TWITTER_PATH" envDefault:"data/twitter_sample.json"`

	// Decision log
	LogBackend  string `env:"LOG_BACKEND" envDefault:"csv"`
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"data/actions_log.csv"`
	LogDBPath   string `env:"LOG_DB_PATH" envDefault:"data/actions_log.db"`

	// Scoring and replies
	VoiceFilePath      string  `env:"VOICE_FILE_PATH"`
	HighValueThreshold float64 `env:"HIGH_VALUE_THRESHOLD" envDefault:"50"`
	InfluenceScale     string  `env:"INFLUENCE_SCALE" envDefault:"linear"`

	// Dashboard
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Logging
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	// Telegram review bot
	TelegramBotToken  string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers      []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AdminUserID       int64   `env:"ADMIN_USER"`
	AllowlistFilePath string  `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`
	PendingFilePath   string  `env:"PENDING_FILE_PATH" envDefault:"data/pending.json"`
	ReportCron        string  `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`
}

// New reads the configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LogBackend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("LOG_BACKEND must be csv or sqlite, got %q", c.LogBackend)
	}
	switch c.InfluenceScale {
	case "linear", "log":
	default:
		return fmt.Errorf("INFLUENCE_SCALE must be linear or log, got %q", c.InfluenceScale)
	}
	switch c.LLMProvider {
	case ProviderNone, ProviderOpenAI, ProviderYandex:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.HighValueThreshold < 0 || c.HighValueThreshold > 100 {
		return fmt.Errorf("HIGH_VALUE_THRESHOLD must be within 0..100, got %v", c.HighValueThreshold)
	}
	return nil
}
