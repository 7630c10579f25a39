package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/Dosada05/matchsquad/config"
)

func newTestResendTransport(t *testing.T, handler http.HandlerFunc) *ResendTransport {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	transport := NewResendTransport("re_test")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	transport.client.BaseURL = base
	return transport
}

func TestResendTransportSend(t *testing.T) {
	var got map[string]interface{}
	transport := newTestResendTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	})

	err := transport.Send(context.Background(), Message{
		From:    "MatchSquad <hola@matchsquad.app>",
		To:      "a@b.com",
		Subject: "Invitación",
		HTML:    "<p>hola</p>",
		Text:    "hola",
	})
	require.NoError(t, err)
	assert.Equal(t, "MatchSquad <hola@matchsquad.app>", got["from"])
	assert.Equal(t, []interface{}{"a@b.com"}, got["to"])
	assert.Equal(t, "Invitación", got["subject"])
	assert.Equal(t, "<p>hola</p>", got["html"])
	assert.Equal(t, "hola", got["text"])
}

func TestResendTransportRejected(t *testing.T) {
	transport := newTestResendTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	})

	err := transport.Send(context.Background(), Message{From: "bad", To: "a@b.com", Subject: "x", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend")

	assert.Error(t, transport.Send(context.Background(), Message{From: "x@y.com"}))
}

func TestBuildMailMessage(t *testing.T) {
	m, err := buildMailMessage(Message{
		From:    "MatchSquad <hola@matchsquad.app>",
		To:      "a@b.com",
		Subject: "Nueva invitacion",
		HTML:    "<p>hola</p>",
		Text:    "hola",
	})
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com"}, rcpts)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "Nueva invitacion")
}

func TestBuildMailMessageRejectsBadAddresses(t *testing.T) {
	_, err := buildMailMessage(Message{From: "not an address", To: "a@b.com"})
	assert.Error(t, err)

	_, err = buildMailMessage(Message{From: "hola@matchsquad.app", To: "a@@b"})
	assert.Error(t, err)

	_, err = buildMailMessage(Message{From: "hola@matchsquad.app"})
	assert.Error(t, err)
}

func TestSMTPClientOptions(t *testing.T) {
	client, err := mail.NewClient("smtp.test", smtpClientOptions(config.SMTPConfig{Port: 465})...)
	require.NoError(t, err)
	assert.Equal(t, "smtp.test:465", client.ServerAddr())

	client, err = mail.NewClient("smtp.test", smtpClientOptions(config.SMTPConfig{Port: 587, Username: "u", Password: "p"})...)
	require.NoError(t, err)
	assert.Equal(t, "smtp.test:587", client.ServerAddr())
}
