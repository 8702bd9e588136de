// Package email delivers outbound email
package email

import (
	"fmt"

	"github.com/userhub/user-service/internal/config"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Sender delivers a single email message
type Sender interface {
	// Send delivers a plain-text email. A non-nil error means the message
	// was not delivered and the caller may roll back dependent state.
	Send(to, subject, body string) error
}

// smtpSender sends email through an SMTP server
type smtpSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates an SMTP-backed sender
func NewSMTPSender(cfg config.SMTPConfig) *smtpSender {
	return &smtpSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send delivers the message via SMTP
func (s *smtpSender) Send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// logSender logs messages instead of delivering them, for development
type logSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that only logs, used in development
func NewLogSender(logger *zap.Logger) *logSender {
	return &logSender{logger: logger}
}

// Send logs the message and reports success
func (s *logSender) Send(to, subject, body string) error {
	s.logger.Info("email sent (development mode)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
