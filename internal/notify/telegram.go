// Package notify delivers the post-submission messages: a short alert to
// the internal sales channel and a confirmation email to the customer.
// Both are best effort; a delivery failure never fails a submission.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"doorquote/internal/storage"
)

type TelegramNotifier struct {
	bot       *tgbotapi.BotAPI
	channelID int64
	logger    *zap.Logger
}

// NewTelegramNotifier connects the bot. An empty token or zero channel
// id disables the notifier; callers get nil and skip it.
func NewTelegramNotifier(token string, channelID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if token == "" || channelID == 0 {
		logger.Warn("Channel notifications disabled - no token or channel ID configured")
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:       bot,
		channelID: channelID,
		logger:    logger,
	}, nil
}

// NotifyNewQuote posts a short summary of a fresh quote to the sales
// channel.
func (n *TelegramNotifier) NotifyNewQuote(ctx context.Context, quote storage.Quote) error {
	text := fmt.Sprintf(
		"New quote #%d\n"+
			"Customer: %s\n"+
			"Door: %s\n"+
			"Size: %s\n"+
			"Items: %d\n"+
			"Total: $%.2f\n"+
			"Contact: %s / %s",
		quote.ID,
		quote.Name,
		quote.DoorType,
		quote.Size,
		quote.ItemCount,
		quote.GrandTotal,
		quote.Email,
		quote.Phone,
	)

	msg := tgbotapi.NewMessage(n.channelID, text)

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("Failed to send channel notification",
			zap.Int64("quote_id", quote.ID),
			zap.Error(err))
		return fmt.Errorf("send channel notification: %w", err)
	}
	return nil
}
