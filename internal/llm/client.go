// Package llm talks to the language-model backend and owns the deterministic
// fallback behavior when that backend is unavailable.
package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of one reply generation, propagated by value. The
// orchestrator never sees a backend error: a failed call surfaces as a
// fallback Result with Detail set for diagnostics.
type Result struct {
	Text         string
	UsedFallback bool
	Detail       string
}

// Client generates a completion for an ordered message list. A call is
// best-effort: transport errors, non-2xx responses, malformed payloads and
// empty completions are all reported as errors.
type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
