package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"mobirent/internal/pkg/config"
	"mobirent/internal/pkg/errs"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewSender picks the SMTP sender when mail is configured and the no-op
// sender otherwise, so local setups run without a mail relay.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled || cfg.Host == "" {
		return NopSender{}
	}
	return &SMTPSender{cfg: cfg}
}

type SMTPSender struct {
	cfg config.SMTPConfig
}

func (s *SMTPSender) Send(_ context.Context, to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, htmlBody)

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return errs.Wrap(err, "failed to send mail")
	}
	return nil
}

// NopSender logs instead of sending. Used when SMTP is not configured.
type NopSender struct{}

func (NopSender) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("mail suppressed, SMTP not configured", "to", to, "subject", subject)
	return nil
}
