package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"

	"doorquote/internal/config"
	"doorquote/internal/storage"
)

type EmailNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewEmailNotifier builds the customer-confirmation sender. An empty
// SMTP host disables it; callers get nil and skip it.
func NewEmailNotifier(cfg config.SMTPConfig, logger *zap.Logger) *EmailNotifier {
	if cfg.Host == "" {
		logger.Warn("Email confirmations disabled - no SMTP host configured")
		return nil
	}
	return &EmailNotifier{cfg: cfg, logger: logger}
}

// SendQuoteConfirmation emails the customer their quote reference and
// total.
func (n *EmailNotifier) SendQuoteConfirmation(ctx context.Context, quote storage.Quote) error {
	mail := mailyak.New(
		fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port),
		smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host),
	)

	mail.From(n.cfg.From)
	mail.FromName("Door Quote Team")
	mail.To(quote.Email)
	mail.Subject(fmt.Sprintf("Your quote #%d", quote.ID))

	mail.Plain().Set(fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thanks for configuring your %s with us. Your quote reference is #%d.\n\n"+
			"Items: %d\n"+
			"Subtotal: $%.2f\n"+
			"Delivery: $%.2f\n"+
			"Installation: $%.2f\n"+
			"Tax: $%.2f\n"+
			"Grand total: $%.2f\n\n"+
			"A specialist will reach out within one business day to review the "+
			"configuration and schedule a site measurement.\n",
		quote.Name,
		quote.DoorType,
		quote.ID,
		quote.ItemCount,
		quote.Subtotal,
		quote.DeliveryCost,
		quote.InstallationCost,
		quote.Tax,
		quote.GrandTotal,
	))

	if err := mail.Send(); err != nil {
		n.logger.Error("Failed to send confirmation email",
			zap.Int64("quote_id", quote.ID),
			zap.Error(err))
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}
