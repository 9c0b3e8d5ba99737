package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to, subject, body string
	err               error
}

func (c *captureSender) Send(_ context.Context, to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return c.err
}

func TestMailerRendersCode(t *testing.T) {
	c := &captureSender{}
	m := NewMailer(c)

	require.NoError(t, m.SendLoginCode(context.Background(), "a@example.com", "123456"))
	assert.Equal(t, "a@example.com", c.to)
	assert.Contains(t, c.subject, "登录验证码")
	assert.Contains(t, c.body, "123456")

	require.NoError(t, m.SendRegistrationCode(context.Background(), "b@example.com", "654321"))
	assert.Contains(t, c.subject, "邮箱验证码")
	assert.Contains(t, c.body, "654321")
}

func TestMailerPropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	m := NewMailer(&captureSender{err: boom})
	err := m.SendLoginCode(context.Background(), "a@example.com", "1")
	assert.ErrorIs(t, err, boom)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("me@example.com", "游戏展示平台", "you@example.com", "主题", "<p>hi</p>"))

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "To: you@example.com")
	assert.Contains(t, head, "<me@example.com>")
	assert.Contains(t, head, "Content-Type: text/html; charset=UTF-8")
	assert.NotContains(t, head, "主题", "subject must be encoded")

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.TrimSpace(body), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(decoded))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), "a@example.com", "s", "b"))
}
