package email

import (
	"context"
	"crypto/tls"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"perfeval/internal/domain/notifications"
	"perfeval/internal/platform/config"
)

// noopMailer is used when email delivery is disabled; notifications are
// still recorded in the database.
type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg notifications.Message) error {
	return nil
}

type smtpMailer struct {
	host        string
	addr        string
	user        string
	password    string
	useTLS      bool
	dialTimeout time.Duration
	now         func() time.Time
}

func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{
		host:        cfg.SMTPHost,
		addr:        net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		user:        cfg.SMTPUser,
		password:    cfg.SMTPPassword,
		useTLS:      cfg.SMTPUseTLS,
		dialTimeout: 10 * time.Second,
		now:         time.Now,
	}
}

// Send delivers one notification. Only user recipients have a mailbox;
// anything else is skipped without dialing.
func (m *smtpMailer) Send(ctx context.Context, msg notifications.Message) error {
	if msg.Kind != notifications.RecipientUser || strings.TrimSpace(msg.To) == "" {
		return nil
	}
	client, err := m.connect(ctx)
	if err != nil {
		return eris.Wrapf(err, "email: connect %s", m.addr)
	}
	defer client.Close()

	if err := deliver(client, msg.From, msg.To, compose(msg, m.now())); err != nil {
		return eris.Wrapf(err, "email: deliver %s", msg.Template)
	}
	return client.Quit()
}

func (m *smtpMailer) connect(ctx context.Context) (*smtp.Client, error) {
	dialer := net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if m.useTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	if m.user != "" {
		if err := client.Auth(smtp.PlainAuth("", m.user, m.password, m.host)); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func deliver(client *smtp.Client, from, to string, payload []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// compose renders msg as a plain-text message. The template name travels in
// its own header so bounces can be traced back to a notification type.
func compose(msg notifications.Message, at time.Time) []byte {
	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}
	header("From", headerValue(msg.From))
	header("To", headerValue(msg.To))
	header("Subject", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	header("Date", at.UTC().Format(time.RFC1123Z))
	header("X-Perfeval-Template", headerValue(msg.Template))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// headerValue drops line breaks so rendered template text cannot inject
// extra headers.
func headerValue(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}
