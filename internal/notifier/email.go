package notifier

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	gomail "gopkg.in/mail.v2"

	"KursPajak/internal/exporter"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// EmailSender delivers run summaries and exports via SMTP.
type EmailSender struct {
	cfg    EmailConfig
	logger *slog.Logger
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg EmailConfig, logger *slog.Logger) *EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailSender{cfg: cfg, logger: logger}
}

// Enabled reports whether sending is configured.
func (s *EmailSender) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// Send delivers a plain text email, attaching the export when present.
func (s *EmailSender) Send(subject, body string, attachment *exporter.Payload) error {
	if !s.Enabled() {
		return nil
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(s.message(subject, body, attachment)); err != nil {
		s.logger.Error("email send failed",
			slog.String("to", s.cfg.ToEmail),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("email sent", slog.String("subject", subject))
	return nil
}

func (s *EmailSender) message(subject, body string, attachment *exporter.Payload) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if attachment != nil {
		data := attachment.Data
		m.Attach(attachment.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {attachment.MIMEType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}))
	}
	return m
}
