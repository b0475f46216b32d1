// Package mail delivers outbound email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/RealCodeCrafter/trt-backend/internal/config"
)

// ErrNotConfigured is returned when no SMTP host or recipient is set.
var ErrNotConfigured = errors.New("mail transport not configured")

// Message is a plain text email with an optional HTML alternative.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages to the configured recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an authenticated SMTP relay.
type SMTPSender struct {
	cfg    config.MailConfig
	logger *zap.Logger
	send   func(m *gomail.Message) error
}

// NewSMTPSender builds a sender; the connection is opened per message.
func NewSMTPSender(cfg config.MailConfig, logger *zap.Logger) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPSender{cfg: cfg, logger: logger, send: func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	}}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.Host == "" || s.cfg.To == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := s.send(m); err != nil {
		s.logger.Error("smtp send failed", zap.String("host", s.cfg.Host), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	s.logger.Info("mail sent", zap.String("subject", msg.Subject))
	return nil
}
