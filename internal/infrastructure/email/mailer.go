// Package email delivers outbound notification mail over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/expensetracker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message is a single outbound email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends notification emails
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer implements Mailer over a plain SMTP connection.
// STARTTLS is negotiated automatically when the server offers it.
type SMTPMailer struct {
	cfg *config.SMTPConfig
	log *zap.Logger

	// send is swappable in tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer from SMTP settings
func NewSMTPMailer(cfg *config.SMTPConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// Send delivers the message. It returns an error when the SMTP dialog
// fails; callers decide whether that failure is fatal.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)

	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	m.log.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// NoopMailer implements Mailer without sending anything. It is used when
// no SMTP host is configured; the notifier then only logs deliveries.
type NoopMailer struct {
	log *zap.Logger
}

// NewNoopMailer creates a mailer that only logs
func NewNoopMailer(log *zap.Logger) *NoopMailer {
	return &NoopMailer{log: log}
}

// Send logs the message instead of delivering it
func (m *NoopMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info("mail delivery disabled, skipping send",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// NewMailer picks the SMTP mailer when a host is configured and the
// logging no-op otherwise
func NewMailer(cfg *config.SMTPConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewNoopMailer(log)
	}
	return NewSMTPMailer(cfg, log)
}
