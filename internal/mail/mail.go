// Package mail delivers password reset messages.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/yukikurage/gestor-tarefas/internal/config"
)

const resetSubject = "Password reset request"

// Sender sends account mail.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// NewSender returns an SMTP sender when mail is configured, otherwise a sender that only logs.
func NewSender(cfg config.MailConfig, log zerolog.Logger) Sender {
	if !cfg.Enabled() {
		log.Warn().Msg("mail server not configured, password reset mail will not be delivered")
		return &LogSender{log: log}
	}
	return NewSMTPSender(cfg, log)
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

func NewSMTPSender(cfg config.MailConfig, log zerolog.Logger) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.UseSSL
	dialer.TLSConfig = &tls.Config{ServerName: cfg.Server, MinVersion: tls.VersionTLS12}

	return &SMTPSender{
		dialer: dialer,
		from:   cfg.From(),
		log:    log.With().Str("component", "mail").Logger(),
	}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := NewResetMessage(s.from, to, resetURL)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}

	s.log.Info().Str("to", to).Msg("password reset mail sent")
	return nil
}

// NewResetMessage builds the reset mail with a plain text body and an HTML alternative.
func NewResetMessage(from, to, resetURL string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", resetSubject)
	msg.SetBody("text/plain", fmt.Sprintf(
		"To reset your password, open the link below:\n\n%s\n\nThe link expires in one hour. "+
			"If you did not request a reset, ignore this message.\n", resetURL))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>To reset your password, <a href="%s">click here</a>.</p>`+
			`<p>The link expires in one hour. If you did not request a reset, ignore this message.</p>`,
		html.EscapeString(resetURL)))
	return msg
}

// LogSender records that a reset was requested without delivering anything.
type LogSender struct {
	log zerolog.Logger
}

func (s *LogSender) SendPasswordReset(_ context.Context, to, _ string) error {
	s.log.Info().Str("to", to).Msg("password reset requested, mail delivery disabled")
	return nil
}
