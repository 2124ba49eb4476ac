package httpapi

import (
	"context"

	"go.uber.org/zap"
)

// EmailSender sends an email message to a recipient. Real delivery is
// delegated to an external transactional provider behind this interface.
type EmailSender interface {
	SendEmail(ctx context.Context, recipient string, subject string, message string) error
}

type noopEmailSender struct{}

func (noopEmailSender) SendEmail(ctx context.Context, recipient string, subject string, message string) error {
	return nil
}

func resolveEmailSender(sender EmailSender) EmailSender {
	if sender == nil {
		return noopEmailSender{}
	}
	return sender
}

// LoggingEmailSender records outgoing mail instead of delivering it; used in
// environments without a provider credential.
type LoggingEmailSender struct {
	Logger *zap.Logger
}

// SendEmail logs the message envelope.
func (sender LoggingEmailSender) SendEmail(ctx context.Context, recipient string, subject string, message string) error {
	if sender.Logger != nil {
		sender.Logger.Info("send_email",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Int("body_bytes", len(message)),
		)
	}
	return nil
}
