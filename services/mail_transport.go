package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/wneessen/go-mail"

	"github.com/Dosada05/matchsquad/config"
)

const smtpDialTimeout = 10 * time.Second

// ResendTransport отправляет письма через Resend API.
type ResendTransport struct {
	client *resend.Client
}

func NewResendTransport(apiKey string) *ResendTransport {
	return &ResendTransport{client: resend.NewClient(apiKey)}
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("recipient is empty")
	}
	sent, err := t.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return errors.New("resend: empty message id")
	}
	return nil
}

// SMTPTransport: порт 465 - неявный TLS, на остальных STARTTLS, если сервер его поддерживает.
type SMTPTransport struct {
	cfg config.SMTPConfig
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := buildMailMessage(msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(t.cfg.Host, smtpClientOptions(t.cfg)...)
	if err != nil {
		return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("ошибка отправки SMTP: %w", err)
	}
	return nil
}

func smtpClientOptions(cfg config.SMTPConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(smtpDialTimeout),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts
}

// buildMailMessage собирает multipart/alternative: текст и HTML.
func buildMailMessage(msg Message) (*mail.Msg, error) {
	if msg.To == "" {
		return nil, errors.New("recipient is empty")
	}
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
