package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/dom-retail/domcredsys/internal/config"
)

// Notifier posts business events to a Telegram chat so the back office can
// follow credit activity without watching logs. Disabled when no bot token
// is configured; all methods are safe to call on a disabled notifier.
type Notifier struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if cfg.NotifyBotToken == "" {
		return &Notifier{cfg: cfg}, nil
	}

	b, err := bot.New(cfg.NotifyBotToken, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create notify bot: %w", err)
	}
	return &Notifier{bot: b, cfg: cfg}, nil
}

type eventType string

const (
	eventCredits eventType = "credits"
	eventAdmin   eventType = "admin"
	eventError   eventType = "error"
)

func (n *Notifier) send(event eventType, message string) {
	if n.bot == nil || n.cfg.NotifyChatID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          n.cfg.NotifyChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: n.topicID(event),
	})
	if err != nil {
		slog.Error("failed to send telegram notification", "type", event, "error", err)
	}
}

func (n *Notifier) topicID(event eventType) int {
	switch event {
	case eventCredits:
		return n.cfg.NotifyTopicCredits
	case eventAdmin:
		return n.cfg.NotifyTopicAdmin
	case eventError:
		return n.cfg.NotifyTopicError
	default:
		return 0
	}
}

func (n *Notifier) CreditCreated(code, storeID, createdBy string) {
	n.send(eventCredits, fmt.Sprintf("🎟 *Credit Created*\n\n*Code:* `%s`\n*Store:* `%s`\n*By:* %s",
		code, storeID, createdBy))
}

func (n *Notifier) CreditClaimed(code, storeID, claimedBy string) {
	n.send(eventCredits, fmt.Sprintf("✅ *Credit Claimed*\n\n*Code:* `%s`\n*Store:* `%s`\n*By:* %s",
		code, storeID, claimedBy))
}

func (n *Notifier) CreditUnclaimed(code, storeID, unclaimedBy string) {
	n.send(eventCredits, fmt.Sprintf("↩️ *Credit Unclaimed*\n\n*Code:* `%s`\n*Store:* `%s`\n*By:* %s",
		code, storeID, unclaimedBy))
}

func (n *Notifier) UserChanged(action, code, byAdmin string) {
	n.send(eventAdmin, fmt.Sprintf("👤 *User %s*\n\n*Code:* `%s`\n*By:* %s", action, code, byAdmin))
}

func (n *Notifier) Error(err error, context string) {
	n.send(eventError, fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05")))
}
