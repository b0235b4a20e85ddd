// Package assistant implements the message-handling pipeline: admission
// control, history, command interception, LLM orchestration and activity
// logging. The transport only converts messages in and replies out.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wechat-assistant/internal/config"
	"wechat-assistant/internal/history"
	"wechat-assistant/internal/llm"
	"wechat-assistant/internal/logx"
	"wechat-assistant/internal/ratelimit"
	"wechat-assistant/internal/storage"
)

// GroupKeyPrefix marks group-chat sender keys in the WeChat web protocol.
const GroupKeyPrefix = "@@"

const (
	cmdHelp         = "/help"
	cmdStatus       = "/status"
	cmdClearHistory = "/clear_history"
	cmdStats        = "/stats"
)

const (
	rateLimitedReply = "你发得太快了，请稍后再试。"
	clearedReply     = "已清除你的对话历史。"
	statsNoData      = "最近没有消息记录。"
	statsDisabled    = "消息记录功能未启用。"
	helpReply        = "可用命令：\n" +
		"/help - 显示本帮助\n" +
		"/status - 查看运行状态\n" +
		"/clear_history - 清除你的对话历史\n" +
		"/stats - 最近 7 天消息统计"
)

// Inbound is the typed inbound message, validated once at the transport
// boundary before it enters the pipeline.
type Inbound struct {
	SenderID string
	Text     string
}

// IsGroup reports whether the sender key follows the group-chat convention.
func (m Inbound) IsGroup() bool { return strings.HasPrefix(m.SenderID, GroupKeyPrefix) }

// Responder produces the AI reply for a prompt plus rendered context.
type Responder interface {
	Reply(ctx context.Context, prompt, contextText string) llm.Result
}

// Allowlist is the scope filter. Size() == 0 disables filtering.
type Allowlist interface {
	IsAllowed(key string) bool
	Size() int
}

// Assistant owns the per-sender state containers and composes them into the
// reply pipeline. All state lives here, not in package globals.
type Assistant struct {
	cfg       *config.Config
	limiter   *ratelimit.Limiter
	history   *history.Manager
	store     storage.Store // nil when activity logging is disabled
	responder Responder
	allowlist Allowlist // nil or empty disables the scope filter
}

func New(cfg *config.Config, limiter *ratelimit.Limiter, hist *history.Manager, store storage.Store, responder Responder, allowlist Allowlist) *Assistant {
	return &Assistant{
		cfg:       cfg,
		limiter:   limiter,
		history:   hist,
		store:     store,
		responder: responder,
		allowlist: allowlist,
	}
}

// HandleMessage runs one inbound message through the pipeline and returns the
// reply text. An empty return means deliberate silence. The caller is
// responsible for delivery; each message is expected to run in its own
// goroutine so the optional delay suspends nothing else.
func (a *Assistant) HandleMessage(ctx context.Context, msg Inbound) string {
	if !a.cfg.AutoReply {
		return ""
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return ""
	}

	if a.allowlist != nil && a.allowlist.Size() > 0 && !a.allowlist.IsAllowed(msg.SenderID) {
		logx.Debugf("sender %s not on allow-list, ignoring", msg.SenderID)
		return ""
	}

	if msg.IsGroup() {
		if !a.cfg.EnableGroupReply {
			return ""
		}
		if !strings.HasPrefix(text, a.cfg.GroupTriggerPrefix) {
			return ""
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, a.cfg.GroupTriggerPrefix))
		if text == "" {
			return ""
		}
	}

	// Commands short-circuit before admission control and never touch
	// history or the rate window.
	if reply, ok := a.handleCommand(msg.SenderID, text); ok {
		a.logExchange(msg, text, reply)
		return reply
	}

	if !a.limiter.Allow(msg.SenderID) {
		// Throttled retries are deliberately kept out of the activity log
		// so daily stats count user actions, not noise.
		logx.Debugf("rate limited sender %s", msg.SenderID)
		return rateLimitedReply
	}

	if d := a.cfg.ReplyDelay(); d > 0 {
		select {
		case <-ctx.Done():
			return ""
		case <-time.After(d):
		}
	}

	var reply string
	if !a.cfg.EnableAIReply {
		// Echo mode: no AI call, no history.
		reply = llm.Truncate(text, a.cfg.MaxResponseLength)
	} else {
		a.history.AppendUser(msg.SenderID, text)
		contextText := a.history.FormatForPrompt(msg.SenderID, a.cfg.HistoryMaxChars)
		res := a.responder.Reply(ctx, text, contextText)
		if res.UsedFallback {
			logx.Infow("reply used fallback", "sender", msg.SenderID, "detail", res.Detail)
		}
		reply = res.Text
		a.history.AppendAssistant(msg.SenderID, reply)
	}

	a.logExchange(msg, text, reply)
	return reply
}

func (a *Assistant) handleCommand(senderID, text string) (string, bool) {
	switch text {
	case cmdHelp:
		return helpReply, true
	case cmdStatus:
		return a.statusReply(), true
	case cmdClearHistory:
		a.history.Clear(senderID)
		return clearedReply, true
	case cmdStats:
		return a.statsReply(), true
	}
	return "", false
}

func (a *Assistant) statusReply() string {
	onOff := func(b bool) string {
		if b {
			return "开"
		}
		return "关"
	}
	limit := "未启用"
	if a.cfg.RateLimit > 0 {
		limit = fmt.Sprintf("每 %.0f 秒最多 %d 条", a.cfg.RateWindowS, a.cfg.RateLimit)
	}
	return fmt.Sprintf("自动回复:%s\nAI 回复:%s\n模型:%s\n后端:%s\n限流:%s",
		onOff(a.cfg.AutoReply), onOff(a.cfg.EnableAIReply), a.cfg.LLMModel, a.cfg.LLMHost, limit)
}

func (a *Assistant) statsReply() string {
	if a.store == nil {
		return statsDisabled
	}
	stats, err := a.store.GetDailyStats(7)
	if err != nil {
		logx.Errorf("daily stats query failed: %v", err)
		return statsNoData
	}
	if len(stats) == 0 {
		return statsNoData
	}
	lines := make([]string, 0, len(stats))
	for _, st := range stats {
		lines = append(lines, fmt.Sprintf("%s：%d", st.Day, st.Messages))
	}
	return strings.Join(lines, "\n")
}

// logExchange appends the completed exchange to the activity log. Persistence
// failures are surfaced in the process log but never break the reply path.
func (a *Assistant) logExchange(msg Inbound, incoming, reply string) {
	if a.store == nil || reply == "" {
		return
	}
	if err := a.store.LogMessage(msg.SenderID, msg.IsGroup(), incoming, reply); err != nil {
		logx.Errorf("activity log write failed: %v", err)
	}
}
