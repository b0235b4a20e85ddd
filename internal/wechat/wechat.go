// Package wechat binds the assistant to the WeChat web protocol. It is a
// thin adapter: login/session handling belongs to openwechat, and everything
// past the typed Inbound record belongs to the assistant.
package wechat

import (
	"context"
	"fmt"

	"github.com/eatmoreapple/openwechat"

	"wechat-assistant/internal/assistant"
	"wechat-assistant/internal/logx"
)

// Handler answers one inbound message; "" means stay silent.
type Handler interface {
	HandleMessage(ctx context.Context, msg assistant.Inbound) string
}

type Bot struct {
	handler     Handler
	storagePath string
}

// New creates the binding. storagePath holds the hot-reload session so a
// restart does not force a new QR-code scan.
func New(handler Handler, storagePath string) *Bot {
	return &Bot{handler: handler, storagePath: storagePath}
}

// Start logs in (QR code on first run) and blocks until the session ends or
// ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	bot := openwechat.DefaultBot(openwechat.Desktop)
	bot.UUIDCallback = openwechat.PrintlnQrcodeUrl
	bot.MessageHandler = func(msg *openwechat.Message) { b.dispatch(ctx, msg) }

	reloadStorage := openwechat.NewFileHotReloadStorage(b.storagePath)
	defer func() { _ = reloadStorage.Close() }()

	if err := bot.HotLogin(reloadStorage, openwechat.NewRetryLoginOption()); err != nil {
		return fmt.Errorf("wechat login: %w", err)
	}
	logx.Infof("wechat logged in, listening for messages")

	go func() {
		<-ctx.Done()
		bot.Exit()
	}()
	return bot.Block()
}

// dispatch hands one message to the pipeline in its own goroutine so a
// configured reply delay never stalls other senders.
func (b *Bot) dispatch(ctx context.Context, msg *openwechat.Message) {
	inbound, ok := convert(msg)
	if !ok {
		return
	}
	go func() {
		reply := b.handler.HandleMessage(ctx, inbound)
		if reply == "" {
			return
		}
		if _, err := msg.ReplyText(reply); err != nil {
			logx.Errorf("send reply to %s failed: %v", inbound.SenderID, err)
		}
	}()
}

// convert validates the protocol message into the typed Inbound record.
// Non-text messages and messages without a resolvable sender are dropped
// here, before they enter the core.
func convert(msg *openwechat.Message) (assistant.Inbound, bool) {
	if msg == nil || !msg.IsText() {
		return assistant.Inbound{}, false
	}
	sender, err := msg.Sender()
	if err != nil || sender == nil || sender.UserName == "" {
		return assistant.Inbound{}, false
	}
	return assistant.Inbound{SenderID: sender.UserName, Text: msg.Content}, true
}
