// Package mailer sends transactional email through SendGrid or, in
// development, writes it to the log.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"robolab-portal/config"
)

// ErrNoRecipients is returned for a message without a To address.
var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Message is one outbound email.
type Message struct {
	To      []mail.Address
	Subject string
	Text    string
	HTML    string
}

func (m *Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if m.Text == "" && m.HTML == "" {
		return fmt.Errorf("mailer: message %q has no content", m.Subject)
	}
	return nil
}

func joinAddresses(addrs []mail.Address) string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return strings.Join(out, ", ")
}

// Sender delivers a message. Implementations are safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// New builds the sender selected by cfg.Provider.
func New(cfg *config.MailConfig, appName string, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGrid(cfg.SendGridAPIKey, "", appName, cfg.FromName, cfg.FromAddress), nil
	case "log", "":
		return NewLogSender(logger, mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}), nil
	}
	return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
}
