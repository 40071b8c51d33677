package adapter

import (
	"context"
	"fmt"

	"quizdeck/internal/config"
	"quizdeck/internal/domain"

	"gopkg.in/gomail.v2"
)

// SMTPMailer implements domain.EmailSender over SMTP via gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a new instance of SMTPMailer.
func NewSMTPMailer(cfg config.SMTPConfig) domain.EmailSender {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a plain-text message. The context is consulted before
// dialing; gomail itself has no context support.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
