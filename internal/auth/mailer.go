package auth

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"standy/internal/config"
)

// Mailer delivers account emails. The service treats delivery as fire and
// forget; failures are logged, not surfaced to the user.
type Mailer interface {
	SendVerification(to, link string) error
	SendPasswordReset(to, link string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) SendVerification(to, link string) error {
	return m.send(to, "Verify your Standy account",
		"Welcome to Standy. Confirm your email address:\r\n\r\n"+link)
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	return m.send(to, "Reset your Standy password",
		"A password reset was requested for this address. If that was you, follow:\r\n\r\n"+
			link+"\r\n\r\nOtherwise ignore this email.")
}

// LogMailer only logs the links. Used in development when no SMTP relay is
// configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(to, link string) error {
	m.logger.Info("Verification email (not sent, SMTP unconfigured)",
		zap.String("to", to), zap.String("link", link))
	return nil
}

func (m *LogMailer) SendPasswordReset(to, link string) error {
	m.logger.Info("Password reset email (not sent, SMTP unconfigured)",
		zap.String("to", to), zap.String("link", link))
	return nil
}

// NewMailer picks SMTP when a host is configured, otherwise the log-only
// fallback.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg)
}
