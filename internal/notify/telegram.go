package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"neighborly/internal/core/domain"
	"neighborly/internal/core/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier pushes emergency safety posts to a Telegram chat. It is
// optional: without a token it constructs as a disabled no-op, and delivery
// failures are logged and swallowed so posting is never blocked by it.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

var _ ports.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier builds the notifier. An empty token yields a disabled
// notifier and no error.
func NewTelegramNotifier(token, chatIDStr string, logger *zap.Logger) (*TelegramNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if token == "" {
		return &TelegramNotifier{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Enabled reports whether alerts will actually be sent.
func (n *TelegramNotifier) Enabled() bool {
	return n != nil && n.bot != nil
}

// SafetyAlert sends the post to the configured chat. Best effort only.
func (n *TelegramNotifier) SafetyAlert(ctx context.Context, post domain.Post) {
	if !n.Enabled() {
		return
	}

	title := post.Title
	if title == "" {
		title = "Emergency alert"
	}
	text := fmt.Sprintf("🚨 *[%s]*\n\n%s\n\n_reported by %s, %s_",
		escapeMarkdown(title),
		escapeMarkdown(post.Content),
		escapeMarkdown(post.Author),
		post.Timestamp)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("safety alert delivery failed", zap.Error(err))
	}
}

// escapeMarkdown keeps user text from breaking Telegram markdown parsing.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
