package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/spec-kit/workforce-service/internal/config"
)

// SMTPSender delivers rendered messages with gopkg.in/mail.v2.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	renderer *Renderer
}

// NewSender returns an SMTP sender, or a log-only sender when no SMTP host is
// configured.
func NewSender(cfg config.MailConfig, renderer *Renderer, logger *zap.Logger) Sender {
	if cfg.Host == "" {
		logger.Warn("MAIL_HOST not set; mail will be logged instead of sent")
		return &LogSender{renderer: renderer, logger: logger}
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		renderer: renderer,
	}
}

// Send renders and delivers msg. The dial is bounded by ctx.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	subject, body, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send %s: %w", msg.Kind, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender renders messages and logs them without delivery.
type LogSender struct {
	renderer *Renderer
	logger   *zap.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	subject, _, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}
	s.logger.Info("mail not sent (no smtp host)",
		zap.String("to", msg.To),
		zap.String("kind", string(msg.Kind)),
		zap.String("subject", subject))
	return nil
}
