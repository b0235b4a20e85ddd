package llm

import (
	"fmt"

	"wechat-assistant/internal/config"
)

// NewClient creates the backend client selected by LLM_PROVIDER.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return NewOllama(cfg.LLMHost, cfg.LLMModel, cfg.LLMTimeout()), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.LLMAPIKey, cfg.LLMHost, cfg.LLMModel, cfg.LLMTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
