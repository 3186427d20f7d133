// Package mail sends plain-text transactional email over SMTP.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers mail through a single SMTP endpoint. When disabled it
// logs and drops the message, matching the fire-and-forget contract.
type Sender struct {
	logger  *slog.Logger
	enabled bool
	addr    string
	host    string
	user    string
	pass    string
	from    string
}

// Config holds SMTP settings.
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NewSender constructs a Sender.
func NewSender(logger *slog.Logger, cfg Config) *Sender {
	return &Sender{
		logger:  logger,
		enabled: cfg.Enabled,
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:    cfg.Host,
		user:    cfg.User,
		pass:    cfg.Password,
		from:    cfg.From,
	}
}

// Send delivers one message. A disabled sender drops it with a log line.
func (s *Sender) Send(to, subject, body string) error {
	if !s.enabled {
		s.logger.Info("smtp disabled, dropping mail", slog.String("to", to), slog.String("subject", subject))
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}
