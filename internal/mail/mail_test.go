package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRender(t *testing.T) {
	msg, err := render(TemplateVerification, CodeData{Code: "042137", ExpiresIn: 10 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "Verification Code", msg.Subject)
	assert.Contains(t, msg.Body, "042137")
	assert.Contains(t, msg.Body, "10m0s")
	assert.Contains(t, msg.Body, "verify your email")

	msg, err = render(TemplatePasswordReset, CodeData{Code: "<b>"})
	require.NoError(t, err)
	assert.Equal(t, "Password Reset Code", msg.Subject)
	assert.Contains(t, msg.Body, "&lt;b&gt;")

	_, err = render(Template("nope"), CodeData{})
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Send(context.Background(), "a@b.com", TemplatePasswordReset, CodeData{Code: "123456"}))
	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@b.com", fields["to"])
	assert.Equal(t, "123456", fields["code"])
}

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage("from@teklip.com", "to@b.com", message{Subject: "Hi", Body: "<p>x</p>"}))
	assert.True(t, strings.HasPrefix(raw, "From: from@teklip.com\r\nTo: to@b.com\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}

func TestXOAuth2(t *testing.T) {
	a := xoauth2{user: "me@gmail.com", token: "tok"}

	_, _, err := a.Start(&smtp.ServerInfo{Name: "smtp.gmail.com"})
	assert.Error(t, err)

	mech, resp, err := a.Start(&smtp.ServerInfo{Name: "smtp.gmail.com", TLS: true})
	require.NoError(t, err)
	assert.Equal(t, "XOAUTH2", mech)
	assert.Equal(t, "user=me@gmail.com\x01auth=Bearer tok\x01\x01", string(resp))

	next, err := a.Next([]byte(`{"status":"400"}`), true)
	require.NoError(t, err)
	assert.Empty(t, next)
}
