package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeClient struct {
	text string
	err  error

	gotMessages []Message
}

func (f *fakeClient) Generate(ctx context.Context, messages []Message) (string, error) {
	f.gotMessages = messages
	return f.text, f.err
}

func TestReplySuccess(t *testing.T) {
	fc := &fakeClient{text: "好的，没问题。"}
	r := NewResponder(fc, 200)

	res := r.Reply(context.Background(), "在吗", "用户：你好\n助手：你好！")
	if res.UsedFallback {
		t.Fatalf("successful call must not be flagged as fallback: %+v", res)
	}
	if res.Text != "好的，没问题。" {
		t.Fatalf("unexpected reply: %q", res.Text)
	}

	if len(fc.gotMessages) != 2 || fc.gotMessages[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", fc.gotMessages)
	}
	if !strings.Contains(fc.gotMessages[0].Content, "用户：你好") {
		t.Fatalf("context not folded into system hint: %q", fc.gotMessages[0].Content)
	}
	if fc.gotMessages[1].Content != "在吗" {
		t.Fatalf("unexpected user message: %q", fc.gotMessages[1].Content)
	}
}

func TestReplyTruncatesOutput(t *testing.T) {
	fc := &fakeClient{text: strings.Repeat("好", 50)}
	r := NewResponder(fc, 10)

	res := r.Reply(context.Background(), "hi", "")
	if got := utf8.RuneCountInString(res.Text); got != 10 {
		t.Fatalf("expected 10 runes, got %d (%q)", got, res.Text)
	}
	if !strings.HasSuffix(res.Text, "…") {
		t.Fatalf("truncated reply should end with ellipsis: %q", res.Text)
	}
}

func TestReplyFallbackOnError(t *testing.T) {
	fc := &fakeClient{err: errors.New("connection refused")}
	r := NewResponder(fc, 200)

	res := r.Reply(context.Background(), "今天天气怎么样", "")
	if !res.UsedFallback {
		t.Fatalf("backend error must produce a fallback result")
	}
	if res.Text == "" {
		t.Fatalf("fallback text must be non-empty")
	}
	if !strings.Contains(res.Text, "今天天气怎么样") {
		t.Fatalf("echo fallback should quote the user: %q", res.Text)
	}
	if !strings.Contains(res.Detail, "connection refused") {
		t.Fatalf("diagnostic detail missing: %q", res.Detail)
	}
}

func TestFallbackRules(t *testing.T) {
	r := NewResponder(&fakeClient{}, 200)

	if res := r.Fallback(""); res.Text != "你好！我在。" || !res.UsedFallback {
		t.Fatalf("empty input fallback mismatch: %+v", res)
	}
	if res := r.Fallback("请给我一些帮助"); !strings.Contains(res.Text, "/help") {
		t.Fatalf("help rule not applied: %+v", res)
	}
	if res := r.Fallback("HELP me"); !strings.Contains(res.Text, "/help") {
		t.Fatalf("case-insensitive help rule not applied: %+v", res)
	}
	if res := r.Fallback("随便说点"); !strings.Contains(res.Text, "你说：随便说点") {
		t.Fatalf("echo rule not applied: %+v", res)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("short input must be unchanged: %q", got)
	}
	if got := Truncate("exact", 5); got != "exact" {
		t.Fatalf("exact-length input must be unchanged: %q", got)
	}
	if got := Truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := Truncate("一二三四五六", 3); got != "一二…" {
		t.Fatalf("rune truncation mismatch: %q", got)
	}
	if got := Truncate("anything goes", 0); got != "anything goes" {
		t.Fatalf("max<=0 must disable truncation: %q", got)
	}
}
