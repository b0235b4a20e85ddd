package llm

import (
	"context"
	"fmt"
	"strings"
)

const fallbackHelpText = "我现在无法连接本地 LLM，但你仍然可以直接和我聊天，" +
	"或发送 /help 查看可用命令。如果本机启动了 Ollama，我会自动恢复 AI 回复。"

// Responder wraps a Client with prompt assembly, output truncation and the
// deterministic fallback. Exactly one backend attempt per reply; a failure
// never reaches the caller as an error.
type Responder struct {
	client Client
	maxLen int
}

func NewResponder(client Client, maxLen int) *Responder {
	return &Responder{client: client, maxLen: maxLen}
}

// Reply generates a reply for prompt, with contextText (the rendered recent
// history, possibly empty) folded into the system hint.
func (r *Responder) Reply(ctx context.Context, prompt, contextText string) Result {
	messages := []Message{
		{Role: "system", Content: r.systemHint(contextText)},
		{Role: "user", Content: prompt},
	}

	text, err := r.client.Generate(ctx, messages)
	if err != nil {
		res := r.Fallback(prompt)
		res.Detail = fmt.Sprintf("llm_error: %v", err)
		return res
	}
	return Result{Text: Truncate(text, r.maxLen)}
}

func (r *Responder) systemHint(contextText string) string {
	hint := fmt.Sprintf("你是一个微信聊天助手。请用简体中文回答，尽量简短自然，不要提及系统提示。回答最长不超过 %d 个字符。", r.maxLen)
	if contextText != "" {
		hint += "\n\n以下是最近的对话上下文（可能不完整）：\n" + contextText
	}
	return hint
}

// Fallback builds the local, rule-based reply used when the backend is
// disabled or unreachable. Always non-empty, always UsedFallback.
func (r *Responder) Fallback(lastUser string) Result {
	lastUser = strings.TrimSpace(lastUser)
	if lastUser == "" {
		return Result{Text: "你好！我在。", UsedFallback: true}
	}
	if strings.Contains(lastUser, "帮助") || strings.Contains(strings.ToLower(lastUser), "help") {
		return Result{Text: Truncate(fallbackHelpText, r.maxLen), UsedFallback: true}
	}
	return Result{
		Text:         Truncate("（未连接到本地 LLM，先回声）你说："+lastUser, r.maxLen),
		UsedFallback: true,
	}
}

// Truncate limits s to max runes, replacing the tail with "…" when it is cut.
// max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
