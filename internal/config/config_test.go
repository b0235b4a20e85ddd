package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if !cfg.AutoReply {
		t.Fatalf("auto reply should default to enabled")
	}
	if !cfg.EnableAIReply {
		t.Fatalf("AI reply should default to enabled")
	}
	if cfg.LLMProvider != ProviderOllama {
		t.Fatalf("unexpected default provider: %s", cfg.LLMProvider)
	}
	if cfg.LLMModel != "mistral" || cfg.LLMHost != "http://localhost:11434" {
		t.Fatalf("unexpected LLM defaults: model=%s host=%s", cfg.LLMModel, cfg.LLMHost)
	}
	if cfg.MaxResponseLength != 200 {
		t.Fatalf("unexpected max response length: %d", cfg.MaxResponseLength)
	}
	if cfg.RateLimit != 0 {
		t.Fatalf("rate limiting should be disabled by default, got %d", cfg.RateLimit)
	}
	if cfg.HistoryMaxItems != 10 || cfg.HistoryMaxChars != 1200 {
		t.Fatalf("unexpected history defaults: items=%d chars=%d", cfg.HistoryMaxItems, cfg.HistoryMaxChars)
	}
	if cfg.EnableGroupReply {
		t.Fatalf("group replies should default to disabled")
	}
	if len(cfg.AllowedUsers) != 0 {
		t.Fatalf("allow-list should default to empty, got %v", cfg.AllowedUsers)
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Defaults()

	if got := cfg.ReplyDelay(); got != 2*time.Second {
		t.Fatalf("reply delay: got %v", got)
	}
	if got := cfg.LLMTimeout(); got != time.Minute {
		t.Fatalf("llm timeout: got %v", got)
	}
	if got := cfg.RateWindow(); got != time.Minute {
		t.Fatalf("rate window: got %v", got)
	}
	if got := cfg.HistoryTTL(); got != 30*time.Minute {
		t.Fatalf("history ttl: got %v", got)
	}
}

func TestMalformedValueFallsBackToDefaults(t *testing.T) {
	t.Setenv("MAX_RESPONSE_LENGTH", "not-a-number")
	t.Setenv("LLM_MODEL", "qwen2")

	cfg := New()

	// One bad value must not abort; the whole config reverts to defaults.
	if cfg.MaxResponseLength != 200 {
		t.Fatalf("expected default max response length, got %d", cfg.MaxResponseLength)
	}
	if cfg.LLMModel != "mistral" {
		t.Fatalf("expected default model after fallback, got %s", cfg.LLMModel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_WINDOW_S", "10")
	t.Setenv("ALLOWED_USERS", "alice:bob")

	cfg := New()

	if cfg.RateLimit != 5 {
		t.Fatalf("rate limit: got %d", cfg.RateLimit)
	}
	if got := cfg.RateWindow(); got != 10*time.Second {
		t.Fatalf("rate window: got %v", got)
	}
	if len(cfg.AllowedUsers) != 2 || cfg.AllowedUsers[0] != "alice" || cfg.AllowedUsers[1] != "bob" {
		t.Fatalf("allow-list: got %v", cfg.AllowedUsers)
	}
}
