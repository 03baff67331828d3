// Package mail delivers contact form messages.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"growt/internal/domain"
)

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPMailer sends contact messages through an SMTP relay using PLAIN auth.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ domain.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, logger: logger.With(zap.String("component", "mail")), send: smtp.SendMail}
}

// SendContact delivers one contact form message to the configured inbox.
func (m *SMTPMailer) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	body := compose(m.cfg.From, m.cfg.To, msg, time.Now())
	if err := m.send(addr, auth, m.cfg.From, []string{m.cfg.To}, body); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	m.logger.Info("contact message sent", zap.String("reply_to", msg.Email))
	return nil
}

func compose(from, to string, msg domain.ContactMessage, at time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", to)
	header("Reply-To", msg.Email)
	header("Subject", mime.QEncoding.Encode("utf-8", "GROWT contact: "+msg.Name))
	header("Date", at.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "From: %s <%s>\r\n\r\n", msg.Name, msg.Email)
	b.WriteString(strings.ReplaceAll(msg.Message, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

// LogMailer records contact messages in the log instead of sending them.
// Used when no SMTP relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

var _ domain.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger.With(zap.String("component", "mail"))}
}

// SendContact logs the message.
func (m *LogMailer) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	m.logger.Info("contact message (smtp disabled)",
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.Int("length", len(msg.Message)),
	)
	return nil
}
