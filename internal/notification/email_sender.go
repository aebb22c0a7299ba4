package notification

import (
	"context"

	"go.uber.org/zap"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailSender delivers notification e-mails for the consumer.
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}

// LogEmailSender records deliveries in the log instead of talking to a mail
// server.
type LogEmailSender struct {
	logger *zap.Logger
}

func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	if logger == nil {
		logger = zap.L()
	}
	return &LogEmailSender{logger: logger.Named("notification.email")}
}

func (s *LogEmailSender) Send(ctx context.Context, email Email) error {
	s.logger.Info("email delivered",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("body_length", len(email.Body)),
	)
	return nil
}
