package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"perfeval/internal/domain/notifications"
	"perfeval/internal/platform/config"
)

func message() notifications.Message {
	return notifications.Message{
		Template:  notifications.TypeSelfAssessmentSubmitted,
		Recipient: "40",
		Kind:      notifications.RecipientUser,
		From:      "hr@example.com",
		To:        "m@example.com",
		Subject:   "Self-assessment\r\nBcc: x@example.com",
		Body:      "Ada submitted.",
	}
}

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	_, ok := mailer.(noopMailer)
	assert.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), message()))

	mailer = New(config.Config{EmailEnabled: true})
	_, ok = mailer.(noopMailer)
	assert.True(t, ok)
}

func TestNewJoinsHostAndPort(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "::1", SMTPPort: 2525})
	smtp, ok := mailer.(*smtpMailer)
	assert.True(t, ok)
	assert.Equal(t, "[::1]:2525", smtp.addr)
}

func TestSendSkipsEmployeeRecipients(t *testing.T) {
	// nothing listens on the address; a dial attempt would fail
	m := &smtpMailer{host: "127.0.0.1", addr: "127.0.0.1:1", dialTimeout: time.Millisecond, now: time.Now}
	msg := message()
	msg.Recipient = notifications.EmployeeRecipient(20)
	msg.Kind = notifications.RecipientEmployee
	assert.NoError(t, m.Send(context.Background(), msg))

	msg = message()
	msg.To = " "
	assert.NoError(t, m.Send(context.Background(), msg))
}

func TestCompose(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	msg := string(compose(message(), at))

	assert.True(t, strings.HasPrefix(msg, "From: hr@example.com\r\nTo: m@example.com\r\n"))
	assert.Contains(t, msg, "Subject: Self-assessment  Bcc: x@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.Contains(t, msg, "Date: Wed, 01 Apr 2026 09:00:00 +0000\r\n")
	assert.Contains(t, msg, "X-Perfeval-Template: self_assessment_submitted\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nAda submitted."))
}

func TestComposeEncodesNonASCIISubject(t *testing.T) {
	msg := message()
	msg.Subject = "Évaluation soumise"
	out := string(compose(msg, time.Now()))
	assert.Contains(t, out, "Subject: =?utf-8?q?")
	assert.NotContains(t, out, "Évaluation")
}
