package notify

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/newkimjiwon/freshbox/app/cfg"
	"github.com/newkimjiwon/freshbox/app/database"
)

// EmailNotifier sends the expiry digest over SMTP. When the SMTP settings
// are incomplete the notifier stays a no-op and logs once, so running
// without mail configured is not an error.
type EmailNotifier struct {
	host     string
	port     int
	from     string
	to       string
	password string
}

func NewEmailNotifier() *EmailNotifier {
	c := cfg.Get()
	return &EmailNotifier{
		host:     c.SMTPHost,
		port:     c.SMTPPort,
		from:     c.SMTPFrom,
		to:       c.SMTPTo,
		password: c.SMTPPassword,
	}
}

func (n *EmailNotifier) configured() bool {
	return n.host != "" && n.from != "" && n.to != ""
}

func (n *EmailNotifier) EnsureChannel() error {
	if !n.configured() {
		slog.Warn("SMTP not configured, expiry notifications disabled")
		return nil
	}
	slog.Debug("Expiry notification channel ready", "channel_id", ChannelID, "to", n.to)
	return nil
}

func (n *EmailNotifier) NotifyExpiring(items []database.FoodItem) error {
	if len(items) == 0 {
		return nil
	}
	if !n.configured() {
		slog.Warn("Skipping expiry notification, SMTP not configured", "items_count", len(items))
		return nil
	}

	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", n.to)
	message.SetHeader("Subject", DigestTitle)
	message.SetHeader("X-Channel-ID", ChannelID)
	message.SetBody("text/plain", DigestMessage(items))

	dialer := gomail.NewDialer(n.host, n.port, n.from, n.password)
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send expiry notification: %w", err)
	}

	slog.Info("Expiry notification sent", "items_count", len(items), "to", n.to)
	return nil
}
