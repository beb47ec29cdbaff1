package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// SMTPProvider sends email through an SMTP relay. Ports 465 and 587 use
// implicit TLS and STARTTLS respectively; anything else is plain SMTP.
type SMTPProvider struct {
	cfg SMTPConfig
}

// NewSMTPProvider reads SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASSWORD.
func NewSMTPProvider() *SMTPProvider {
	return NewSMTPProviderWithConfig(SMTPConfig{
		Host:     GetEnvOrDefault("SMTP_HOST", ""),
		Port:     GetEnvOrDefault("SMTP_PORT", "1025"),
		User:     GetEnvOrDefault("SMTP_USER", ""),
		Password: GetEnvOrDefault("SMTP_PASSWORD", ""),
	})
}

// NewSMTPProviderWithConfig creates a provider with explicit settings.
func NewSMTPProviderWithConfig(cfg SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

// Name returns the provider name.
func (p *SMTPProvider) Name() string {
	return "smtp"
}

// IsConfigured reports whether a host was set.
func (p *SMTPProvider) IsConfigured() bool {
	return p.cfg.Host != ""
}

// Send sends req via SMTP.
func (p *SMTPProvider) Send(ctx context.Context, req *EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	from := p.envelopeFrom(req.From)
	msg := buildMessage(from, req.To, req.Subject, req.Body, time.Now())
	addr := net.JoinHostPort(p.cfg.Host, p.cfg.Port)

	if err := p.deliver(ctx, addr, from, req.To, msg); err != nil {
		slog.Error("SMTP send failed",
			"error", err,
			"smtp_server", addr,
			"to", req.To,
		)
		return fmt.Errorf("SMTP send failed: %w", err)
	}

	slog.Info("Email sent via SMTP",
		"smtp_server", addr,
		"to", req.To,
	)
	return nil
}

// Gmail rejects an envelope sender that differs from the authenticated user.
func (p *SMTPProvider) envelopeFrom(from string) string {
	if strings.Contains(p.cfg.Host, "gmail.com") && p.cfg.User != "" {
		return p.cfg.User
	}
	return from
}

func (p *SMTPProvider) deliver(ctx context.Context, addr, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: 30 * time.Second}

	var conn net.Conn
	var err error
	if p.cfg.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: p.cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if p.cfg.Port == "587" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: p.cfg.Host}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if p.cfg.User != "" && p.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", p.cfg.User, p.cfg.Password, p.cfg.Host)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender %s: %w", from, err)
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		slog.Warn("Error during SMTP QUIT", "error", err)
	}
	return nil
}

// buildMessage renders an RFC 822 plain text message.
func buildMessage(from string, to []string, subject, body string, now time.Time) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return msg.Bytes()
}
