// Package config loads the assistant configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v6"

	"wechat-assistant/internal/logx"
)

type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderOpenAI LLMProvider = "openai"
)

type Config struct {
	// Reply pipeline
	AutoReply         bool    `env:"WECHAT_AUTO_REPLY" envDefault:"true"`
	ReplyDelayS       float64 `env:"REPLY_DELAY" envDefault:"2.0"`
	EnableAIReply     bool    `env:"ENABLE_AI_REPLY" envDefault:"true"`
	MaxResponseLength int     `env:"MAX_RESPONSE_LENGTH" envDefault:"200"`

	// LLM backend
	LLMProvider LLMProvider `env:"LLM_PROVIDER" envDefault:"ollama"`
	LLMModel    string      `env:"LLM_MODEL" envDefault:"mistral"`
	LLMHost     string      `env:"LLM_HOST" envDefault:"http://localhost:11434"`
	LLMAPIKey   string      `env:"LLM_API_KEY"`
	LLMTimeoutS float64     `env:"LLM_TIMEOUT_S" envDefault:"60"`

	// Rate limiting (<=0 disables)
	RateLimit   int     `env:"RATE_LIMIT" envDefault:"0"`
	RateWindowS float64 `env:"RATE_WINDOW_S" envDefault:"60"`

	// Conversation history
	HistoryMaxItems int     `env:"HISTORY_MAX_ITEMS" envDefault:"10"`
	HistoryTTLS     float64 `env:"HISTORY_TTL_S" envDefault:"1800"`
	HistoryMaxChars int     `env:"HISTORY_MAX_CHARS" envDefault:"1200"`

	// Activity log
	EnableMessageLog bool   `env:"ENABLE_MESSAGE_LOG" envDefault:"true"`
	DBPath           string `env:"DB_PATH" envDefault:"data/assistant.db"`
	DailyReportCron  string `env:"DAILY_REPORT_CRON" envDefault:"0 21 * * *"`

	// Group chats
	EnableGroupReply   bool   `env:"ENABLE_GROUP_REPLY" envDefault:"false"`
	GroupTriggerPrefix string `env:"GROUP_TRIGGER_PREFIX" envDefault:"@助手"`

	// Access control (empty = no filtering)
	AllowedUsers      []string `env:"ALLOWED_USERS" envSeparator:":"`
	AllowlistFilePath string   `env:"ALLOWLIST_FILE_PATH"`

	// Ops
	HealthAddr       string `env:"HEALTH_ADDR" envDefault:"127.0.0.1:8900"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
	HotReloadStorage string `env:"HOT_RELOAD_STORAGE" envDefault:"data/wechat_session.json"`
}

// New parses the environment. A malformed value never aborts the process:
// the whole config falls back to the documented defaults instead.
func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		logx.Warnf("malformed environment, using defaults: %v", err)
		cfg = Defaults()
	}
	return cfg
}

// Defaults returns the configuration with every value at its envDefault,
// ignoring the process environment.
func Defaults() *Config {
	cfg := &Config{}
	// An empty environment makes Parse apply envDefault tags only.
	if err := env.Parse(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err) // static tags, cannot fail
	}
	return cfg
}

func (c *Config) ReplyDelay() time.Duration {
	return time.Duration(c.ReplyDelayS * float64(time.Second))
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutS * float64(time.Second))
}

func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateWindowS * float64(time.Second))
}

func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryTTLS * float64(time.Second))
}
