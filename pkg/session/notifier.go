package session

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig carries the mail collaborator's settings (SMTP_* env keys).
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends one HTML message. Send failures are logged by the caller
// and never abort the session.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	cfg  SMTPConfig
	auth smtp.Auth
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

// Configured reports whether a host was provided at all.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Host != ""
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	headers := map[string]string{
		"From":         m.cfg.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for key, value := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", key, value)
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return smtp.SendMail(addr, m.auth, m.cfg.From, []string{to}, []byte(message.String()))
}

// TestConnection sends a short message to the configured sender address.
func (m *SMTPMailer) TestConnection() error {
	body := fmt.Sprintf("<p>dining-audit test email.</p><p>Time: %s</p>",
		time.Now().Format("2006-01-02 15:04:05"))
	return m.Send(m.cfg.From, "dining-audit test email", body)
}
