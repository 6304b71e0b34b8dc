package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/config"
)

// SMTP — реализация Mailer поверх обычного SMTP с STARTTLS.
type SMTP struct {
	cfg config.MailConfig
}

// NewSMTP создаёт SMTP-отправителя из конфигурации.
func NewSMTP(cfg config.MailConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

// SendVerificationEmail отправляет письмо со ссылкой подтверждения.
// Дедлайн берётся из контекста и действует на всё SMTP-соединение.
func (m *SMTP) SendVerificationEmail(ctx context.Context, to, link string) error {
	const op = "mailer.smtp.SendVerificationEmail"

	addr := net.JoinHostPort(m.cfg.SMTPHost, m.cfg.SMTPPort)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := w.Write([]byte(m.message(to, link))); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return client.Quit()
}

func (m *SMTP) message(to, link string) string {
	var b strings.Builder

	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: Подтвердите email в ContactBook\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Для подтверждения email перейдите по ссылке:\r\n")
	b.WriteString(link + "\r\n")

	return b.String()
}
