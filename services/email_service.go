package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/Dosada05/matchsquad/config"
	"github.com/Dosada05/matchsquad/templates"
)

const (
	otpValidMinutes   = 15
	devFallbackSender = "MatchSquad <no-reply@localhost>"
)

// Message - письмо с HTML и текстовой альтернативой.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// MailTransport доставляет готовое письмо.
type MailTransport interface {
	Send(ctx context.Context, msg Message) error
}

type InvitationEmail struct {
	To               string
	RecipientName    string
	OrganizationName string
	InvitedByName    string
	Token            string
	ExpiresAt        time.Time
}

type EmailService interface {
	SendInvitation(ctx context.Context, email InvitationEmail) error
	SendOTP(ctx context.Context, to, code string) error
}

type emailService struct {
	transport MailTransport
	from      string
	publicURL string
	logger    *slog.Logger

	invitationHTML *htmltemplate.Template
	invitationText *texttemplate.Template
	otpHTML        *htmltemplate.Template
	otpText        *texttemplate.Template
}

// NewEmailService создает сервис писем. transport == nil или пустой from означают,
// что доставка не настроена: каждая отправка вернет ErrEmailNotConfigured.
func NewEmailService(transport MailTransport, from, publicURL string, logger *slog.Logger) (EmailService, error) {
	s := &emailService{
		transport: transport,
		from:      from,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    loggerOrDefault(logger),
	}

	var err error
	if s.invitationHTML, err = htmltemplate.ParseFS(templates.Emails, "emails/invitation.html"); err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблона invitation.html: %w", err)
	}
	if s.invitationText, err = texttemplate.ParseFS(templates.Emails, "emails/invitation.txt"); err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблона invitation.txt: %w", err)
	}
	if s.otpHTML, err = htmltemplate.ParseFS(templates.Emails, "emails/otp.html"); err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблона otp.html: %w", err)
	}
	if s.otpText, err = texttemplate.ParseFS(templates.Emails, "emails/otp.txt"); err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблона otp.txt: %w", err)
	}
	return s, nil
}

// NewEmailServiceFromConfig выбирает транспорт по конфигурации:
// Resend при заданном AUTH_RESEND_KEY, затем SMTP, затем лог вне production.
// Без всего этого доставка не настроена.
func NewEmailServiceFromConfig(cfg *config.Config, logger *slog.Logger) (EmailService, error) {
	logger = loggerOrDefault(logger)
	switch {
	case cfg.Resend.Enabled():
		return NewEmailService(NewResendTransport(cfg.Resend.APIKey), cfg.Resend.From, cfg.PublicURL, logger)
	case cfg.SMTP.Host != "":
		return NewEmailService(NewSMTPTransport(cfg.SMTP), cfg.SMTP.From, cfg.PublicURL, logger)
	case !cfg.IsProduction():
		logger.Warn("no mail provider configured, emails will be written to the log")
		from := cfg.SMTP.From
		if from == "" {
			from = devFallbackSender
		}
		return NewEmailService(NewLogTransport(logger), from, cfg.PublicURL, logger)
	default:
		logger.Error("no mail provider configured, email delivery is disabled")
		return NewEmailService(nil, cfg.SMTP.From, cfg.PublicURL, logger)
	}
}

func (s *emailService) InvitationLink(token string) string {
	return fmt.Sprintf("%s/accept-invitation?token=%s", s.publicURL, token)
}

func (s *emailService) SendInvitation(ctx context.Context, email InvitationEmail) error {
	data := struct {
		RecipientName    string
		OrganizationName string
		InvitedByName    string
		InvitationLink   string
		ExpirationDate   string
	}{
		RecipientName:    email.RecipientName,
		OrganizationName: email.OrganizationName,
		InvitedByName:    email.InvitedByName,
		InvitationLink:   s.InvitationLink(email.Token),
		ExpirationDate:   formatSpanishDate(email.ExpiresAt),
	}

	html, text, err := render(s.invitationHTML, s.invitationText, data)
	if err != nil {
		return err
	}
	return s.send(ctx, Message{
		To:      email.To,
		Subject: fmt.Sprintf("Invitación para administrar %s - MatchSquad", email.OrganizationName),
		HTML:    html,
		Text:    text,
	})
}

func (s *emailService) SendOTP(ctx context.Context, to, code string) error {
	data := struct {
		Code         string
		ValidMinutes int
	}{Code: code, ValidMinutes: otpValidMinutes}

	html, text, err := render(s.otpHTML, s.otpText, data)
	if err != nil {
		return err
	}
	return s.send(ctx, Message{
		To:      to,
		Subject: "Tu código de verificación - MatchSquad",
		HTML:    html,
		Text:    text,
	})
}

func (s *emailService) send(ctx context.Context, msg Message) error {
	if s.transport == nil || s.from == "" {
		return ErrEmailNotConfigured
	}
	msg.From = s.from
	if err := s.transport.Send(ctx, msg); err != nil {
		s.logger.Error("email delivery failed", slog.String("to", msg.To), slog.String("subject", msg.Subject), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}
	s.logger.Info("email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

func render(html *htmltemplate.Template, text *texttemplate.Template, data interface{}) (string, string, error) {
	var htmlBody, textBody bytes.Buffer
	if err := html.Execute(&htmlBody, data); err != nil {
		return "", "", fmt.Errorf("ошибка выполнения шаблона %s: %w", html.Name(), err)
	}
	if err := text.Execute(&textBody, data); err != nil {
		return "", "", fmt.Errorf("ошибка выполнения шаблона %s: %w", text.Name(), err)
	}
	return htmlBody.String(), textBody.String(), nil
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// formatSpanishDate: "15 de octubre de 2026".
func formatSpanishDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// LogTransport пишет письма в лог вместо отправки (режим разработки).
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: loggerOrDefault(logger)}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("recipient is empty")
	}
	t.logger.Info("email (log transport)",
		slog.String("from", msg.From),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}
