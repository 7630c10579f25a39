package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/matchsquad/config"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (t *recordingTransport) Send(_ context.Context, msg Message) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func TestSendInvitationRendersMessage(t *testing.T) {
	transport := &recordingTransport{}
	svc, err := NewEmailService(transport, "MatchSquad <hola@matchsquad.app>", "https://matchsquad.app/", nil)
	require.NoError(t, err)

	err = svc.SendInvitation(context.Background(), InvitationEmail{
		To:               "a@b.com",
		RecipientName:    "Ana",
		OrganizationName: "Club Padel Norte",
		InvitedByName:    "Luis",
		Token:            "abcDEF123",
		ExpiresAt:        time.Date(2026, time.October, 22, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)

	msg := transport.sent[0]
	assert.Equal(t, "MatchSquad <hola@matchsquad.app>", msg.From)
	assert.Equal(t, "a@b.com", msg.To)
	assert.Equal(t, "Invitación para administrar Club Padel Norte - MatchSquad", msg.Subject)
	assert.Contains(t, msg.HTML, "https://matchsquad.app/accept-invitation?token=abcDEF123")
	assert.Contains(t, msg.HTML, "Hola <strong>Ana</strong>")
	assert.Contains(t, msg.Text, "Luis te ha invitado a Club Padel Norte en MatchSquad.")
	assert.Contains(t, msg.Text, "22 de octubre de 2026")
}

func TestSendOTPRendersCode(t *testing.T) {
	transport := &recordingTransport{}
	svc, err := NewEmailService(transport, "no-reply@matchsquad.app", "http://localhost:3000", nil)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(context.Background(), "a@b.com", "042137"))
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "Tu código de verificación - MatchSquad", transport.sent[0].Subject)
	assert.Contains(t, transport.sent[0].HTML, "042137")
	assert.Equal(t, "Tu código de verificación es: 042137. Este código expirará en 15 minutos.", strings.TrimSpace(transport.sent[0].Text))
}

func TestSendWithoutConfiguration(t *testing.T) {
	svc, err := NewEmailService(nil, "", "http://localhost:3000", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.SendOTP(context.Background(), "a@b.com", "123456"), ErrEmailNotConfigured)

	svc, err = NewEmailService(&recordingTransport{}, "", "http://localhost:3000", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.SendOTP(context.Background(), "a@b.com", "123456"), ErrEmailNotConfigured)
}

func TestSendWrapsTransportFailure(t *testing.T) {
	svc, err := NewEmailService(&recordingTransport{err: errors.New("connection refused")}, "x@y.com", "http://localhost:3000", nil)
	require.NoError(t, err)

	err = svc.SendOTP(context.Background(), "a@b.com", "123456")
	require.ErrorIs(t, err, ErrEmailDeliveryFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewEmailServiceFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		transport interface{}
		from      string
	}{
		{
			name:      "resend wins over smtp",
			cfg:       &config.Config{Resend: config.ResendConfig{APIKey: "re_123", From: "MatchSquad <hola@matchsquad.app>"}, SMTP: config.SMTPConfig{Host: "smtp.test", From: "smtp@matchsquad.app"}},
			transport: &ResendTransport{},
			from:      "MatchSquad <hola@matchsquad.app>",
		},
		{
			name:      "smtp",
			cfg:       &config.Config{AppEnv: "production", SMTP: config.SMTPConfig{Host: "smtp.test", Port: 587, From: "smtp@matchsquad.app"}},
			transport: &SMTPTransport{},
			from:      "smtp@matchsquad.app",
		},
		{
			name:      "log outside production",
			cfg:       &config.Config{AppEnv: "development"},
			transport: &LogTransport{},
			from:      devFallbackSender,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmailServiceFromConfig(tt.cfg, nil)
			require.NoError(t, err)
			impl := svc.(*emailService)
			assert.IsType(t, tt.transport, impl.transport)
			assert.Equal(t, tt.from, impl.from)
		})
	}

	prod := &config.Config{AppEnv: "production", PublicURL: "https://matchsquad.app"}
	svc, err := NewEmailServiceFromConfig(prod, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.SendOTP(context.Background(), "a@b.com", "123456"), ErrEmailNotConfigured)
}

func TestFormatSpanishDate(t *testing.T) {
	assert.Equal(t, "1 de enero de 2027", formatSpanishDate(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
