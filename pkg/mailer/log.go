package mailer

import (
	"context"
	"net/mail"
	"sync"

	"go.uber.org/zap"
)

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *zap.Logger
	from   mail.Address

	mu   sync.Mutex
	sent []Message
}

var _ Sender = (*LogSender)(nil)

func NewLogSender(logger *zap.Logger, from mail.Address) *LogSender {
	return &LogSender{logger: logger, from: from}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info("email",
		zap.String("from", s.from.String()),
		zap.String("to", joinAddresses(msg.To)),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)

	s.mu.Lock()
	s.sent = append(s.sent, *msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of every message accepted so far.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
