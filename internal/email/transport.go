// Package email provides the outbound mail transport and the invoice
// summary template rendered into every notification.
package email

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Transport sends one HTML email and returns the message id.
type Transport interface {
	Send(to, subject, htmlBody string) (string, error)
}

// SMTPConfig holds SMTP transport settings
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	SenderName string
}

// SMTPTransport sends mail over SMTP via gomail.
type SMTPTransport struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPTransport creates a new SMTP transport
func NewSMTPTransport(cfg SMTPConfig, logger *zap.Logger) *SMTPTransport {
	return &SMTPTransport{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Send delivers one HTML message. The generated Message-ID is returned so
// callers can record it in the email history.
func (t *SMTPTransport) Send(to, subject, htmlBody string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.cfg.Host)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", t.cfg.From, t.cfg.SenderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/html", htmlBody)

	if err := t.dialer.DialAndSend(m); err != nil {
		t.logger.Error("Failed to send email",
			zap.String("recipient", to),
			zap.String("subject", subject),
			zap.Error(err))
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	t.logger.Info("Email sent",
		zap.String("recipient", to),
		zap.String("message_id", messageID))
	return messageID, nil
}
