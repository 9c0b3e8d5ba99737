// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mail delivers verification codes by email.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"localgame/internal/metrics"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	UseSSL   bool
	FromName string
}

// SMTPSender sends mail through an authenticated SMTP server. With UseSSL
// the connection is TLS from the start (port 465); otherwise STARTTLS is
// negotiated.
type SMTPSender struct {
	cfg     SMTPConfig
	timeout time.Duration
}

// NewSMTPSender returns a sender for cfg.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, timeout: 15 * time.Second}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := buildMessage(s.cfg.User, s.cfg.FromName, to, subject, htmlBody)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	if s.cfg.UseSSL {
		conn = tls.Client(conn, tlsCfg)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if !s.cfg.UseSSL {
		if err := client.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.User != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.User); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

// buildMessage renders a MIME message with a base64 HTML body.
func buildMessage(from, fromName, to, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fromHeader := from
	if fromName != "" {
		fromHeader = mime.BEncoding.Encode("UTF-8", fromName) + " <" + from + ">"
	}
	b.WriteString("From: " + fromHeader + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(htmlBody))
	for len(encoded) > 76 {
		b.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded + "\r\n")
	return b.Bytes()
}

// LogSender writes emails to the log instead of sending them. Used in
// development when no SMTP password is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	slog.Info("email not sent (log sender)", "to", to, "subject", subject, "body", htmlBody)
	return nil
}

var codeTemplate = template.Must(template.New("code").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #2c4a5c;">{{.Heading}}</h2>
    <p>{{.Lead}}</p>
    <div style="background-color: #f0f0f0; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 5px;">{{.Code}}</div>
    <p style="color: #666; margin-top: 20px;">此验证码5分钟内有效，请勿泄露给他人。</p>
    <p style="color: #999; font-size: 12px;">{{.Footer}}</p>
</div>`))

type codeView struct {
	Heading string
	Lead    string
	Code    string
	Footer  string
}

// Mailer sends the verification emails of the auth flows.
type Mailer struct {
	sender Sender
}

// NewMailer wraps sender.
func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

// SendRegistrationCode emails a registration code.
func (m *Mailer) SendRegistrationCode(ctx context.Context, email, code string) error {
	return m.send(ctx, email, "【游戏平台】邮箱验证码", codeView{
		Heading: "邮箱验证",
		Lead:    "您的验证码是：",
		Code:    code,
		Footer:  "如非本人操作，请忽略此邮件。",
	})
}

// SendLoginCode emails a login code.
func (m *Mailer) SendLoginCode(ctx context.Context, email, code string) error {
	return m.send(ctx, email, "【游戏平台】登录验证码", codeView{
		Heading: "登录验证",
		Lead:    "您的登录验证码是：",
		Code:    code,
		Footer:  "如非本人操作，请立即修改密码。",
	})
}

func (m *Mailer) send(ctx context.Context, to, subject string, view codeView) error {
	var body strings.Builder
	if err := codeTemplate.Execute(&body, view); err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	err := m.sender.Send(ctx, to, subject, body.String())
	metrics.ObserveEmail(err == nil)
	if err != nil {
		slog.Error("email send failed", "to", to, "error", err)
		return fmt.Errorf("send email: %w", err)
	}
	slog.Info("email sent", "to", to)
	return nil
}
